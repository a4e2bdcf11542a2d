package agendaapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clinicamia/agenda-service/internal/domain/entities"
)

// Client talks to the agenda service's HTTP API. It is used by the
// queue-watch process to poll a doctor's daily snapshot.
type Client interface {
	GetDailyQueue(ctx context.Context, doctorID string) (*entities.DailyQueue, error)
	GetScheduleChecksum(ctx context.Context, doctorID string) (string, error)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// ChecksumResponse is the wire shape of the schedule checksum endpoint
type ChecksumResponse struct {
	DoctorID string `json:"doctor_id"`
	Checksum string `json:"checksum"`
}

// NewClient creates an HTTP client against the given base URL
func NewClient(baseURL string) *HTTPClient {
	trimmed := strings.TrimRight(baseURL, "/")
	return &HTTPClient{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetDailyQueue fetches the derived daily queue for a doctor
func (c *HTTPClient) GetDailyQueue(ctx context.Context, doctorID string) (*entities.DailyQueue, error) {
	endpoint := fmt.Sprintf("%s/api/doctors/%s/daily-queue", c.baseURL, doctorID)
	out := &struct {
		Queue *entities.DailyQueue `json:"queue"`
	}{}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, out); err != nil {
		return nil, err
	}
	if out.Queue == nil {
		return nil, fmt.Errorf("agenda api returned an empty queue payload")
	}
	return out.Queue, nil
}

// GetScheduleChecksum fetches the cheap change-detection token for a doctor's day
func (c *HTTPClient) GetScheduleChecksum(ctx context.Context, doctorID string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/doctors/%s/schedule-checksum", c.baseURL, doctorID)
	out := &ChecksumResponse{}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, out); err != nil {
		return "", err
	}
	return out.Checksum, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpoint string, body io.Reader, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("agenda api returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}

	return nil
}
