// File: internal/source/nextdata.go
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const userAgent = "Mozilla/5.0 (compatible; FlipRadar/0.1)"

const nextDataMarker = `<script id="__NEXT_DATA__" type="application/json">`

// fetchNextData fetches a marketplace page and decodes the embedded
// Next.js data blob into out. Both supported marketplaces render their
// search results this way.
func fetchNextData(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("reading %s: %w", url, err)
	}

	html := string(body)
	start := strings.Index(html, nextDataMarker)
	if start < 0 {
		return fmt.Errorf("parsing %s: __NEXT_DATA__ blob not found", url)
	}
	payload := html[start+len(nextDataMarker):]
	end := strings.Index(payload, "</script>")
	if end < 0 {
		return fmt.Errorf("parsing %s: unterminated __NEXT_DATA__ blob", url)
	}

	if err := json.Unmarshal([]byte(payload[:end]), out); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}
