package survey

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultResolverURL is the Sesame name-resolution service.
const DefaultResolverURL = "https://cds.unistra.fr/cgi-bin/nph-sesame"

// SesameResolver resolves star names to ICRS coordinates through the
// Sesame service.
type SesameResolver struct {
	baseURL    string
	httpClient *http.Client
}

// NewSesameResolver creates a resolver against the given base URL,
// defaulting to the public Sesame endpoint.
func NewSesameResolver(baseURL string) *SesameResolver {
	if baseURL == "" {
		baseURL = DefaultResolverURL
	}
	return &SesameResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Resolve looks the name up and returns ICRS (ra, dec) in degrees. The
// Sesame text format carries coordinates on a line starting with "%J".
func (r *SesameResolver) Resolve(ctx context.Context, name string) (float64, float64, error) {
	endpoint := r.baseURL + "/-oI/A?" + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("creating resolve request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("resolving %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("resolving %q: unexpected status %d", name, resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "%J ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		ra, err1 := strconv.ParseFloat(fields[1], 64)
		dec, err2 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		return ra, dec, nil
	}
	if err := sc.Err(); err != nil {
		return 0, 0, fmt.Errorf("reading resolver response: %w", err)
	}
	return 0, 0, fmt.Errorf("resolver found no coordinates for %q", name)
}
