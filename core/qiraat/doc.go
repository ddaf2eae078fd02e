// Package qiraat is the comparative alignment and difference engine.
//
// Given parallel transcriptions of the same verse sequence, one per
// canonical transmission lineage (riwaya), the engine normalizes each
// transcription, aligns them word by word, detects where lineages
// diverge, clusters divergent wordings by which lineages share them,
// and persists a structured divergence record. A coverage auditor
// proves which lineages are complete, partial, or missing for which
// verses.
//
// The engine is deliberately permissive: the source material is
// historical and inherently inconsistent, so inconsistency is made
// visible through diagnostics rather than rejected. Recomputation is
// idempotent, clustering is deterministic, and results do not depend
// on worker count or processing order.
package qiraat
