// Package tokenvault manages the lifecycle of per-user OAuth2 credentials for
// HTTP services and single-invocation jobs.
//
// The Engine obtains a token set through the consent flow, encrypts it,
// persists it in a client cookie or a keyed datastore, and on later requests
// loads, decrypts and refreshes it before handing out a ready-to-use client.
// A request never authenticates twice and userinfo is fetched at most once.
//
// # Quick Start
//
//	cfg, err := tokenvault.LoadConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine, deps, err := tokenvault.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer deps.Shutdown(context.Background())
//
//	r := chi.NewRouter()
//	r.Use(engine.Middleware)
//	engine.Handlers(tokenvault.WithSuccessRedirect("/")).Routes(r)
//
//	r.Get("/files", func(w http.ResponseWriter, r *http.Request) {
//	    client, err := engine.AuthenticatedClient(r.Context(), userID)
//	    if errors.Is(err, tokenvault.ErrUnknownUser) {
//	        http.Redirect(w, r, tokenvault.DefaultInitPath, http.StatusFound)
//	        return
//	    }
//	    resp, err := client.HTTPClient(r.Context()).Get("https://www.googleapis.com/drive/v3/files")
//	    // ...
//	})
//
// # Storage
//
// TOKEN_STORAGE_METHOD selects "cookie" (default, no user id needed) or
// "datastore", which keys records by user id in the driver named by
// TOKEN_DATASTORE_DRIVER: memory, redis, postgres or s3.
//
// # Encryption
//
// TOKEN_CIPHER selects "local" (a key derived from TOKEN_ENCRYPTION_KEY,
// secretbox or AES-GCM) or "kms" (AWS KMS key KMS_KEY_ID). Backends only
// ever see ciphertext.
//
// # Execution Modes
//
// ModeHTTP keeps per-request state in the request context; every operation
// fails with ErrMissingRequestContext outside Engine.Middleware or
// WithRequest. ModeSingleInvocation falls back to one process-wide scope
// that lives until Engine.EndInvocation.
//
// # Errors
//
// All failures are sentinel errors checked with errors.Is; see errors.go.
package tokenvault
