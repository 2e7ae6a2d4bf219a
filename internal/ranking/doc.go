// Package ranking loads the ranked track lists produced by the auto-tagging
// models and turns them into playable tracks.
//
// A ranking file is a delimited text file with a header row, one file per
// tag, rows ordered by model activation. The first TopN rows are kept, in
// file order; nothing is re-sorted.
//
// Basic Usage:
//
//	loader := ranking.NewLoader(ranking.LoaderConfig{
//		Format:  ranking.StyleRetrieval,
//		Cache:   ranking.NewCache(),
//		Metrics: metrics,
//	})
//
//	tracks, err := loader.Load(ctx, "rankings/discogs-effnet-bs64-1/Dub_top_100_activations.tsv")
//	if errors.Is(err, ranking.ErrRankingNotFound) {
//		// render a 404
//	}
//	tracks = ranking.Limit(tracks, n)
//
// Loaded files are memoized for the lifetime of the process. Rankings are
// produced offline, so changing a file requires a restart.
package ranking
