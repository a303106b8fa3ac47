package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/zalando/go-keyring"

	"github.com/scriptor-pro/ernest-export/internal/auth"
	"github.com/scriptor-pro/ernest-export/internal/credentials"
	"github.com/scriptor-pro/ernest-export/internal/handler"
	"github.com/scriptor-pro/ernest-export/internal/jobs"
	"github.com/scriptor-pro/ernest-export/internal/middleware"
	"github.com/scriptor-pro/ernest-export/internal/project"
	ws "github.com/scriptor-pro/ernest-export/internal/websocket"
)

const testJWTSecret = "test-secret-for-e2e"

// testApp holds all components needed for testing
type testApp struct {
	app     *fiber.App
	manager *jobs.Manager
}

// setupApp creates a Fiber app wired like main.go but with a mock keychain
// and no Redis, so the rate limiter fails open.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	keyring.MockInit()
	validate := validator.New()

	hub := ws.NewHub()
	go hub.Run()

	credStore := credentials.NewKeychain("ernest-export-e2e")
	manager := jobs.NewManager(hub, credStore, jobs.Options{
		ProgressInterval: 50 * time.Millisecond,
	})

	exportHandler := handler.NewExportHandler(manager, validate)
	credentialsHandler := handler.NewCredentialsHandler(credStore, validate)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(nil)

	app := fiber.New()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "timestamp": time.Now().Unix()})
	})

	api := app.Group("/api", authMiddleware.Authenticate())

	export := api.Group("/export", rateLimiter.ExportLimit(10000))
	export.Post("/", exportHandler.Start)
	export.Post("/cancel/:jobId", exportHandler.Cancel)
	export.Get("/jobs", exportHandler.Jobs)
	export.Get("/jobs/:jobId", exportHandler.Job)
	export.Delete("/:jobId", exportHandler.Cleanup)

	creds := api.Group("/credentials", rateLimiter.CredentialsLimit(10000))
	creds.Post("/", credentialsHandler.Set)
	creds.Delete("/", credentialsHandler.Delete)

	return &testApp{app: app, manager: manager}
}

// newProject creates a project dir with the given config and one document.
func newProject(t *testing.T, config string) (root, doc string) {
	t.Helper()
	root = t.TempDir()
	if err := os.WriteFile(project.ConfigPath(root), []byte(config), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	doc = filepath.Join(root, "chapter.md")
	if err := os.WriteFile(doc, []byte("# one\n"), 0o644); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
	return root, doc
}

// generateToken creates an HMAC bearer token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	signed, err := auth.GenerateToken("test-client", testJWTSecret)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// errorCode extracts the error.code field from an error envelope.
func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %v", result)
	}
	code, _ := errObj["code"].(string)
	return code
}
