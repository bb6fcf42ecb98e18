// Package notepress publishes documents to a note-style content platform
// as drafts.
//
// # Quick Start
//
// Create a publisher, publish a document, and close when done:
//
//	pub := notepress.New(
//	    notepress.WithSession(notepress.Session{Cookie: cookie}),
//	)
//	defer pub.Close()
//
//	result, err := pub.Publish(ctx, notepress.Input{
//	    Markdown: "# Title\n\nBody",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.EditURL)
//
// The result carries the draft key, its edit URL, and any content that
// was skipped (result.Skipped, result.Partial()).
//
// # Pipeline
//
// Each document moves through these stages:
//
//  1. Reading: Markdown (front matter + title line stripped, line parser)
//     or a remote block-document service, both producing one typed node
//     tree.
//  2. Routing: documents with inline images go through the live editor
//     in a controlled browser session (go-rod); everything else is
//     rendered to sanitized HTML and saved over the platform API.
//  3. Delivery: the first image becomes the draft's cover; a terminal
//     save returns the draft key parsed from the editor address.
//
// Headings collapse into the platform's two tiers: source levels 1-2
// render as the major tier, 3 as the minor tier, and deeper levels
// degrade to bold paragraphs.
//
// # Configuration
//
// Use functional options to customize the publisher:
//
//	pub := notepress.New(
//	    notepress.WithTimeout(5 * time.Minute),
//	    notepress.WithBaseURL("https://note.example"),
//	    notepress.WithHeadless(false),
//	    notepress.WithMissingImagePolicy(notepress.MissingImageFail),
//	    notepress.WithBlockService(serviceURL, token),
//	)
//
// Per-document parameters are passed via Input:
//
//	result, err := pub.Publish(ctx, notepress.Input{
//	    Title:    "Weekly Report",
//	    Markdown: content,
//	    DraftKey: "n4f0c2...",        // overwrite an existing draft
//	    Cover:    "cover.png",
//	    Tags:     []string{"tech"},
//	})
//
// # Sessions
//
// Credential acquisition lives outside this package. Callers hand over a
// fixed credential with WithSession, or implement SessionProvider to
// mint fresh credentials when the platform rejects one mid-run. Refreshes
// for the same account are serialized.
//
// # Parallel Publishing
//
// For batches, PublisherPool manages multiple browser sessions:
//
//	pool := notepress.NewPublisherPool(notepress.ResolvePoolSize(0), opts...)
//	defer pool.Close()
//
//	pub := pool.Acquire()
//	defer pool.Release(pub)
package notepress
