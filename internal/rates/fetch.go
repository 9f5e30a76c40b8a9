package rates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultListingURL is the published fuel-cost adjustment listing.
const DefaultListingURL = "https://www.tepco.co.jp/ep/private/fuelcost2/newlist/index-j.html"

// levyPDFPattern is the URL pattern of the levy announcement for a fiscal
// year. The announcement is published on May 1st.
const levyPDFPattern = "https://www.tepco.co.jp/ep/renewable_energy/institution/pdf/%d0501.pdf"

// Fetcher retrieves the raw source documents. Every request is bounded by
// the client timeout so a run can never hang; retries are the scheduler's
// job, not ours.
type Fetcher struct {
	client     *http.Client
	listingURL string
}

// NewFetcher builds a fetcher for the given listing URL (empty selects the
// default) with the given request timeout.
func NewFetcher(listingURL string, timeout time.Duration) *Fetcher {
	if listingURL == "" {
		listingURL = DefaultListingURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		listingURL: listingURL,
	}
}

// WithTransport overrides the underlying transport. Tests use this to plug
// in an httpmock transport.
func (f *Fetcher) WithTransport(rt http.RoundTripper) *Fetcher {
	f.client.Transport = rt
	return f
}

// FetchRatePage returns the raw markup of the fuel-adjustment listing.
func (f *Fetcher) FetchRatePage(ctx context.Context) (string, error) {
	body, err := f.get(ctx, f.listingURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchLevyPDF returns the levy announcement PDF for the fiscal year, or
// (nil, nil) when it has not been published yet. Only a 404 means "not
// published"; everything else unexpected is a FetchError.
func (f *Fetcher) FetchLevyPDF(ctx context.Context, fiscalYear int) ([]byte, error) {
	url := fmt.Sprintf(levyPDFPattern, fiscalYear)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}
