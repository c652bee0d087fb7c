package helpers

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"strings"
	"testing"

	"github.com/localnerve/authorizer-go"
)

func randInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GeneratePassword generates a 10 character password with a capital and special char
func GeneratePassword() string {
	const (
		lower   = "abcdefghijklmnopqrstuvwxyz"
		upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		special = "!@#$%^&*"
		numbers = "0123456789"
		all     = lower + upper + special + numbers
	)

	password := make([]byte, 10)
	password[0] = upper[randInt(len(upper))]
	password[1] = special[randInt(len(special))]
	password[2] = numbers[randInt(len(numbers))]

	for i := 3; i < 10; i++ {
		password[i] = all[randInt(len(all))]
	}

	for i := range password {
		j := randInt(len(password))
		password[i], password[j] = password[j], password[i]
	}

	return string(password)
}

// AcquireSession signs up email with the authorizer, logs in and returns the
// session cookie value and the principal id
func AcquireSession(t *testing.T, authzURL, clientID, email, password string) (string, string) {
	t.Helper()
	client, err := authorizer.NewAuthorizerClient(clientID, authzURL, "", nil)
	if err != nil {
		t.Fatalf("Failed to create authorizer client: %v", err)
	}

	if _, err := client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
	}); err != nil {
		t.Logf("Signup failed (might already exist): %v", err)
	}

	// the SDK does not surface cookies, so the login runs over plain GraphQL
	payload, _ := json.Marshal(map[string]interface{}{
		"query": `mutation login($email: String!, $password: String!) {
			login(params: { email: $email, password: $password }) { user { id } }
		}`,
		"variables": map[string]string{"email": email, "password": password},
	})
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(authzURL, "/")+"/graphql", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Failed to build login request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-authorizer-client-id", clientID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Data struct {
			Login struct {
				User struct {
					ID string `json:"id"`
				} `json:"user"`
			} `json:"login"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}

	for _, c := range resp.Cookies() {
		if strings.HasSuffix(c.Name, "cookie_session") && c.Value != "" {
			return c.Value, body.Data.Login.User.ID
		}
	}
	t.Fatal("Login response carried no session cookie")
	return "", ""
}
