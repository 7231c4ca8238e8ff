// Package medglot translates structured medicine-content records between
// languages using an AI generation service.
//
// Medglot reads catalog records from a data store, checks whether a record is
// eligible for translation (source complete, target not yet complete),
// resolves language-specific keyword hints, translates each field under a
// strict shape contract, validates the output structurally, and persists the
// whole record in a single atomic update. A record either translates entirely
// or not at all.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/dawalabs/medglot"
//	    "github.com/dawalabs/medglot/ledger"
//	    "github.com/dawalabs/medglot/provider"
//	    "github.com/dawalabs/medglot/store"
//	)
//
//	func main() {
//	    client := provider.NewOpenAIClient(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    st := store.NewMemoryStore() // or store.NewPostgresStore(db)
//	    target, _ := medglot.LookupLanguage("bengali")
//
//	    orc := medglot.NewOrchestrator(st, client, target,
//	        medglot.WithLedger(ledger.NewFileLedger("logs")),
//	    )
//
//	    report, err := orc.Run(context.Background(), []medglot.Candidate{
//	        {RouteKey: "augmentin-625-duo-tablet-10s"},
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("done=%d skipped=%d failed=%d\n", report.Done, report.Skipped, report.Failed)
//	}
package medglot
