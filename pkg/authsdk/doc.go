/*
Package authsdk is a Go client for the auth gateway, and the home of the
gateway's JSON wire types.

# Overview

The gateway keeps browser sessions in HttpOnly cookies. SDKClient therefore
carries a cookie jar and behaves like a browser: a successful Login stores the
access and refresh cookies, and later calls send them back automatically.

	client := authsdk.NewSDKClient("https://app.example.com")
	client.Origin = "https://app.example.com"

	// Check gateway health
	health, err := client.GetLiveness(ctx)

	// Create an account; the response says whether email confirmation is pending
	reg, err := client.Register(ctx, authsdk.RegisterRequest{
		Email:       "alice@example.com",
		Password:    "correct horse",
		DisplayName: "Alice",
		RedirectTo:  "/welcome",
	})

	// Sign in and read the profile behind the session cookie
	err = client.Login(ctx, "alice@example.com", "correct horse")
	me, err := client.Me(ctx)

	// Rotate the session, then end it
	err = client.Refresh(ctx, "")
	err = client.Signout(ctx)

# Errors

Every non-2xx JSON response is returned as *APIError carrying the HTTP status,
the stable machine-readable code and, for 429 responses, the number of seconds
to wait:

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.IsRateLimited() {
		time.Sleep(time.Duration(apiErr.RetryAfter) * time.Second)
	}

# Callback

The emailed confirmation link lands on GET /auth/callback. Callback issues that
request without following the redirect and returns the Location so callers can
check for an error query parameter.
*/
package authsdk
