// Package e2e drives a running secure-chat server over HTTP.
// Scenarios are behind the e2e build tag.
package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

const strongPassword = "E2e-Password-123!"

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// Session is a registered e2e user.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.client = &http.Client{Timeout: 30 * time.Second}
}

// Call sends one JSON request, logs it, decodes the response into out when
// given, and returns the status code.
func (s *BaseHTTPSuite) Call(name, method, path, token string, body, out any) int {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	var payload []byte
	if body != nil {
		var err error
		payload, err = sonic.Marshal(body)
		s.Require().NoError(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(s.Config.ServerAddr, "/")+path, bytes.NewReader(payload))
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err, "Failed to reach server at "+s.Config.ServerAddr)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var logBuilder strings.Builder
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintf(&logBuilder, "\nREQUEST:\n%s\nRESPONSE:\n%s", payload, data)
	}
	s.T().Log(logBuilder.String())

	if out != nil && resp.StatusCode < http.StatusBadRequest && len(data) > 0 {
		s.Require().NoError(sonic.Unmarshal(data, out))
	}
	return resp.StatusCode
}

// Register creates a user with a unique email.
func (s *BaseHTTPSuite) Register(name string) Session {
	var session Session
	email := fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8])
	status := s.Call("Register "+name, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": email, "password": strongPassword}, &session)
	s.Require().Equal(http.StatusCreated, status)
	return session
}
