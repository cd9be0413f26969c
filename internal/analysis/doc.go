// Package analysis runs the release note analysis pipeline over one document.
//
// # Pipeline
//
// Engine.Analyze performs, in order:
//
//  1. Domain entity extraction (extractor.Extractor)
//  2. Merge of caller-supplied external entities with the domain entities,
//     then confidence filtering
//  3. Classification and Kubernetes context analysis (classifier.Classifier)
//  4. Breaking change records: filtered entities of the indicator type, or
//     whose text mentions "deprecat", "remov" or "breaking"
//  5. Deprecation records: indicators correlated with API_VERSION and
//     RESOURCE_KIND entities that start within the proximity window
//  6. Action items ranked by priority
//  7. Entity and classification validation
//  8. Aggregation into a models.AnalysisResult (result.Processor)
//
// # Determinism
//
// The engine keeps no state between calls and never reads the clock, so the
// same text and external entities always produce the same result. Analysis
// IDs and processing times are the caller's concern.
//
// # External entities
//
// External entities come from a generic NER service behind EntitySource.
// The engine never calls out itself; callers fetch entities first and pass
// them to Analyze, which rejects any that violate the Entity invariants.
package analysis
