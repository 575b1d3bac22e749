package testutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/app"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// StartDashboardServer runs the dashboard HTTP server in-process using app.NewApp, pointed at scoringURL.
// It returns the base URL; the server is shut down on test cleanup.
func StartDashboardServer(t *testing.T, scoringURL string) (baseURL string) {
	t.Helper()

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	viper.Reset()
	t.Setenv("APP_PORT", fmt.Sprintf("%d", port))
	t.Setenv("APP_SCORING_SERVICE_ADDR", scoringURL)
	t.Setenv("APP_PREDICT_TIMEOUT", "2s")
	t.Setenv("APP_INSIGHTS_TIMEOUT", "2s")
	t.Setenv("APP_ML_RATE_LIMIT_PER_SEC", "0")

	srv, err := app.NewApp(context.Background(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build dashboard app: %v", err)
	}
	baseURL = fmt.Sprintf("http://127.0.0.1:%d", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("dashboard server stopped: %v", err)
		}
	}()

	wctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := waitForReady(wctx, baseURL+"/health"); err != nil {
		_ = srv.Close()
		t.Fatalf("dashboard failed to become ready: %v", err)
	}

	t.Cleanup(func() {
		ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
		defer c()
		_ = srv.Shutdown(ctx)
		viper.Reset()
	})
	return baseURL
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func waitForReady(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 500 * time.Millisecond}
	for {
		if ctx.Err() != nil {
			return fmt.Errorf("timeout waiting for %s", url)
		}
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
}
