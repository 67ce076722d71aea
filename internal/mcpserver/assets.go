package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/natefinch/atomic"
)

const maxAssetSize = 5 << 20 // 5 MB

// imageTypes maps the MIME types accepted for article images to their
// canonical extension.
var imageTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

var unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type uploadResult struct {
	URL           string `json:"url"`
	MarkdownImage string `json:"markdownImage"`
}

func (s *Server) uploadAsset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var data []byte
	var ext string
	if strings.HasPrefix(rawURL, "data:") {
		data, ext, err = decodeDataURI(rawURL)
	} else {
		data, ext, err = fetchImage(ctx, rawURL)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name := assetName(req.GetString("filename", ""), rawURL, ext)
	if err := checkContent(data, filepath.Ext(name)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := os.MkdirAll(s.assetsDir, 0o755); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create assets dir: %v", err)), nil
	}
	dst := filepath.Join(s.assetsDir, name)
	if _, err := os.Stat(dst); err == nil {
		return mcp.NewToolResultError(fmt.Sprintf("asset already exists: %s", name)), nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := atomic.WriteFile(dst, bytes.NewReader(data)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save asset: %v", err)), nil
	}

	u := s.assetsURL + "/" + name
	out, _ := json.Marshal(uploadResult{
		URL:           u,
		MarkdownImage: fmt.Sprintf("![%s](%s)", strings.TrimSuffix(name, filepath.Ext(name)), u),
	})
	return mcp.NewToolResultText(string(out)), nil
}

// decodeDataURI parses a data:<mediatype>;base64,<data> URI.
func decodeDataURI(uri string) ([]byte, string, error) {
	meta, encoded, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("invalid data URI: missing comma separator")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("only base64 data URIs are supported")
	}
	ext, ok := imageTypes[mime]
	if !ok {
		return nil, "", fmt.Errorf("unsupported image type: %s", mime)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(encoded); err != nil {
			return nil, "", fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	if len(data) > maxAssetSize {
		return nil, "", fmt.Errorf("image too large: %d bytes (max %d)", len(data), maxAssetSize)
	}
	return data, ext, nil
}

// fetchImage downloads an image over http(s), refusing loopback and
// metadata addresses.
func fetchImage(ctx context.Context, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported scheme: %s (only http/https)", parsed.Scheme)
	}
	if err := checkHost(parsed.Hostname()); err != nil {
		return nil, "", err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return checkHost(req.URL.Hostname())
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body failed: %w", err)
	}
	if len(data) > maxAssetSize {
		return nil, "", fmt.Errorf("image too large: exceeds %d bytes", maxAssetSize)
	}

	mime, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	return data, imageTypes[strings.TrimSpace(mime)], nil
}

func checkHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return nil //nolint:nilerr // the client reports DNS failures
		}
		ip = ips[0]
	}
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() {
		return fmt.Errorf("blocked host: %s", host)
	}
	return nil
}

// assetName picks a safe file name: the requested one, else the last URL
// path segment, else a random one. ext is added when the name has none.
func assetName(requested, rawURL, ext string) string {
	name := requested
	if name == "" && !strings.HasPrefix(rawURL, "data:") {
		if u, err := url.Parse(rawURL); err == nil {
			name = path.Base(u.Path)
		}
	}
	name = unsafeNameRe.ReplaceAllString(filepath.Base(name), "_")
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "_" {
		name = uuid.NewString()
	}
	if filepath.Ext(name) == "" {
		if ext == "" {
			ext = ".bin"
		}
		name += ext
	}
	return name
}

// checkContent verifies data is an image matching ext.
func checkContent(data []byte, ext string) error {
	ext = strings.ToLower(ext)
	if ext == ".svg" {
		head := data[:min(len(data), 1024)]
		if !bytes.Contains(head, []byte("<svg")) {
			return fmt.Errorf("content is not an SVG image")
		}
		return nil
	}
	detected, _, _ := strings.Cut(http.DetectContentType(data), ";")
	want, ok := imageTypes[detected]
	if !ok {
		return fmt.Errorf("content is not a supported image (detected %s)", detected)
	}
	if ext != want && !(ext == ".jpeg" && want == ".jpg") {
		return fmt.Errorf("content does not match extension %s (detected %s)", ext, detected)
	}
	return nil
}
