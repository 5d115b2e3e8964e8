// Package intentsearch embeds the search intent engine in a Go process.
//
// The engine turns a header search box query into autocomplete suggestions,
// a classified intent and either a navigation target or an aggregated result
// set from the product and content search services.
//
//	client, _ := intentsearch.New(ctx,
//	    intentsearch.WithValkey("localhost:6379", ""),
//	    intentsearch.WithClassifierURL("http://classifier:8000", ""),
//	    intentsearch.WithProductsURL("http://products:8080", ""),
//	    intentsearch.WithContentURL("http://content:8080", ""),
//	)
//	defer client.Close()
//
//	suggestions, _ := client.Suggest(ctx, deviceID, "yoga")
//	out, err := client.Submit(ctx, tabID, deviceID, "runing shose", false)
//	if out.Kind == intentsearch.KindCorrection {
//	    out, err = client.Submit(ctx, tabID, deviceID, out.Suggested, true)
//	}
//
// Without a store option recent searches are kept in process memory.
package intentsearch
