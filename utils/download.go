package utils

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// DownloadBlob fetches a shared drawing file over HTTP and saves it into
// a temporary file. Uploaded drawings come back either as WebP images or
// as opaque binary buffers, so both content types are accepted.
func DownloadBlob(uri string) (*os.File, error) {
	res, err := http.Get(uri)
	if err != nil {
		return nil, fmt.Errorf("unable to download the shared file from URI %s: %v", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download the shared file from URI %s: status %v", uri, res.Status)
	}

	tmpfile, err := os.CreateTemp("", "scrawl")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary file: %w", err)
	}

	if _, err := io.Copy(tmpfile, res.Body); err != nil {
		return nil, fmt.Errorf("unable to copy the response body into the destination file: %v", err)
	}
	if _, err := tmpfile.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	ctype, err := DetectContentType(tmpfile.Name())
	if err != nil {
		return nil, err
	}
	if !strings.Contains(ctype, "image") &&
		!strings.Contains(ctype, "octet-stream") &&
		!strings.Contains(ctype, "text/plain") {
		return nil, fmt.Errorf("the downloaded file is not a shareable drawing type: %s", ctype)
	}

	return tmpfile, nil
}
