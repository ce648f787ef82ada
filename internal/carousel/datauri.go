package carousel

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const pngDataURIPrefix = "data:image/png;base64,"

// PNGDataURI wraps base64-encoded PNG bytes as a displayable image reference.
func PNGDataURI(b64 string) string {
	return pngDataURIPrefix + b64
}

// DecodeDataURI returns the raw bytes behind a base64 data URI.
func DecodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if !strings.HasPrefix(uri, "data:") || comma < 0 {
		return nil, fmt.Errorf("not a data URI")
	}
	meta := uri[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data URI is not base64 encoded")
	}
	return base64.StdEncoding.DecodeString(uri[comma+1:])
}
