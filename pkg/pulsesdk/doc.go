/*
Package pulsesdk provides the wire types and a Go client for the Pulse
company role service.

# Client vs Session

A Client talks to the public endpoints: signup, password authentication,
invite lookup and acceptance, and the health probes. Each of the
authenticating calls returns a Session, which carries the access token and
exposes the endpoints that need one:

	client := pulsesdk.NewClient("https://pulse.example.com")

	session, err := client.Signup(ctx, pulsesdk.SignupRequest{
		Email:       "owner@example.com",
		Password:    "s3cret",
		CompanyName: "Acme",
	})

	role, err := session.CreateRole(ctx, pulsesdk.RoleRequest{Name: "Manager", IsLeader: true})
	sub, err := session.CreateSubRole(ctx, role.ID, pulsesdk.SubRoleRequest{Name: "Reviewer"})

	_, err = session.AssignRole(ctx, userID, role.ID)
	_, err = session.AssignSubRole(ctx, userID, sub.ID)

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status
and the error code from the body. Use errors.As to inspect it:

	var apiErr *pulsesdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == pulsesdk.ErrorCodeNoParentRole {
		// assign the parent role first
	}

Sessions are safe for concurrent use.
*/
package pulsesdk
