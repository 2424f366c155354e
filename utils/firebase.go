package utils

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// GoogleIdentity is the verified subset of a Google/Firebase ID token.
type GoogleIdentity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// FirebaseVerifier checks Google sign-in ID tokens with the Firebase Admin SDK.
type FirebaseVerifier struct {
	client *firebaseauth.Client
}

// InitFirebase builds the Admin SDK app from a service-account file.
func InitFirebase(ctx context.Context, credentialsPath, projectID string) (*FirebaseVerifier, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not configured")
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("firebase app initialization failed: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client initialization failed: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) VerifyGoogleToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	id := &GoogleIdentity{UID: tok.UID}
	if s, ok := tok.Claims["email"].(string); ok {
		id.Email = s
	}
	if s, ok := tok.Claims["name"].(string); ok {
		id.Name = s
	}
	if s, ok := tok.Claims["picture"].(string); ok {
		id.Picture = s
	}
	return id, nil
}
