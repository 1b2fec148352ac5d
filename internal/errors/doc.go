// Package errors provides structured, coded errors for streamstore.
//
// Every error kind the library and its host can produce has a stable code
// (e.g. "E001") registered with a category, a short message, a longer
// explanation and a hint. Exported error types in the public packages wrap
// a *StoreError so callers can match either the public type (errors.As) or
// the code.
//
// # Error Categories
//
//   - runtime: misuse of the store or the render tree (missing container,
//     hook order changes, disposed scopes, render loops)
//   - protocol: malformed or unknown websocket frames
//   - config: invalid configuration files or values
//
// # Usage
//
//	err := errors.New("E001").
//	    WithDetail("binding \"cart\" was used outside its Provider").
//	    WithSuggestion("Render the consumer below cart.Provider(...)")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E001: Store container not found
//	//
//	//   binding "cart" was used outside its Provider
//	//
//	//   Hint: Render the consumer below cart.Provider(...)
package errors
