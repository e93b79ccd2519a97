/*
Package qraxersdk is a Go client for the QRaxer field-service API.

A Client covers the public endpoints and logs technicians in:

	client := qraxersdk.NewClient("https://qraxer.example.com")

	health, err := client.GetLiveness(ctx)

	session, err := client.Login(ctx, "tech@example.com", password)

A Session carries the access and refresh tokens of one technician and
renews the access token shortly before it expires:

	scan, err := session.Scan(ctx, qrContent)

	change, err := session.UpdateState(ctx, qraxersdk.UpdateStateRequest{
		QRContent: qrContent,
		NewState:  "under_repair",
	})

	err = session.Logout(ctx)

# Errors

Failed calls return an *APIError carrying the HTTP status, the error code
and the server description. Compare against the predefined errors with
errors.Is:

	if errors.Is(err, qraxersdk.ErrInvalidQR) {
		var apiErr *qraxersdk.APIError
		errors.As(err, &apiErr)
		fmt.Println("rejected:", apiErr.Description)
	}

The server writes the same type, so both sides agree on codes.
*/
package qraxersdk
