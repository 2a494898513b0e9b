package aws

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"

	"cloudtrim/internal/config"
)

// GetSession creates an AWS session for the configured profile in the
// given region. The HTTP timeout stays below the worker task timeout
// so a stalled API call surfaces as absent metrics instead of a hung
// cycle.
func GetSession(region string) (*session.Session, error) {
	cfg := aws.NewConfig().WithHTTPClient(&http.Client{Timeout: 50 * time.Second})
	if region != "" {
		cfg = cfg.WithRegion(region)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		Profile:           config.Config.Profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return sess, nil
}
