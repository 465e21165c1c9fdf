package survey

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/starfield-simulator/internal/logging"
	"github.com/signalsfoundry/starfield-simulator/model"
)

const (
	// DefaultBaseURL is the VizieR mirror queried for cone searches.
	DefaultBaseURL = "https://vizier.cds.unistra.fr"

	// UCAC4 source table and columns. The column order here fixes the
	// meaning of the SurveyTable fields: position, proper motion, then
	// primary / alt1 / alt2 magnitude bands.
	sourceTable = "I/322A/out"
	columnList  = "_RAJ2000,_DEJ2000,pmRA,pmDE,f.mag,Jmag,Vmag"
)

// Client queries a VizieR-style service for cone searches in
// tab-separated-values form.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logging.Logger
}

// NewClient creates a cone-search client for the given base URL,
// defaulting to the public VizieR mirror.
func NewClient(baseURL string, log logging.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: log,
	}
}

// QueryCone fetches every survey row within the cone. One request, no
// retries; any transport or decode failure is returned to the caller.
func (c *Client) QueryCone(ctx context.Context, cone model.Cone) (*model.SurveyTable, error) {
	q := url.Values{}
	q.Set("-source", sourceTable)
	q.Set("-c", fmt.Sprintf("%f %f", cone.RA, cone.Dec))
	q.Set("-c.rd", fmt.Sprintf("%f", cone.Radius))
	q.Set("-out", columnList)
	q.Set("-out.max", "unlimited")

	endpoint := c.baseURL + "/viz-bin/asu-tsv?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating cone search request: %w", err)
	}

	c.log.Info(ctx, "querying survey", logging.String("cone", cone.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cone search %s: %w", cone, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cone search %s: unexpected status %d", cone, resp.StatusCode)
	}

	table, err := decodeTSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cone search %s: %w", cone, err)
	}
	return table, nil
}

// decodeTSV parses the survey's tab-separated output: comment lines
// start with '#', the header row names the columns, a dashed rule
// follows, then one row per star. Blank cells are missing measurements
// and load as NaN.
func decodeTSV(r io.Reader) (*model.SurveyTable, error) {
	wanted := strings.Split(columnList, ",")
	colIndex := make(map[string]int)

	table := &model.SurveyTable{}
	cols := map[string]*[]float64{
		"_RAJ2000": &table.RA,
		"_DEJ2000": &table.Dec,
		"pmRA":     &table.PMRA,
		"pmDE":     &table.PMDec,
		"f.mag":    &table.Primary,
		"Jmag":     &table.Alt1,
		"Vmag":     &table.Alt2,
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	headerSeen := false
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "---") {
			continue
		}
		fields := strings.Split(line, "\t")
		if !headerSeen {
			for i, name := range fields {
				colIndex[strings.TrimSpace(name)] = i
			}
			for _, name := range wanted {
				if _, ok := colIndex[name]; !ok {
					return nil, fmt.Errorf("survey response missing column %q", name)
				}
			}
			headerSeen = true
			continue
		}
		// unit/format rows repeat the header shape but do not parse as
		// numbers in the position columns; skip them
		raIdx := colIndex["_RAJ2000"]
		if raIdx >= len(fields) || !numeric(fields[raIdx]) {
			continue
		}
		for name, dst := range cols {
			idx := colIndex[name]
			var v float64
			if idx >= len(fields) || strings.TrimSpace(fields[idx]) == "" {
				v = math.NaN()
			} else {
				parsed, err := strconv.ParseFloat(strings.TrimSpace(fields[idx]), 64)
				if err != nil {
					v = math.NaN()
				} else {
					v = parsed
				}
			}
			*dst = append(*dst, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading survey response: %w", err)
	}
	if !headerSeen {
		return nil, fmt.Errorf("survey response contained no header row")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func numeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
