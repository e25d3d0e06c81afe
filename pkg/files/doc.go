// Package files writes generated components to disk.
//
// Writes happen in two phases. Every file is planned first: contents are
// compared with what is already on disk and conflicts are resolved through
// a Resolver (force, skip, show a diff, or ask). Only when every file has
// a decision are the writes applied, and a failed write restores the files
// already touched.
//
//	resolver, _ := files.NewResolver(force, skip, diff)
//	results, err := files.Write(ctx, []files.File{{Path: "Card.tsx", Content: code}}, files.Options{
//		Resolver: resolver,
//	})
package files
