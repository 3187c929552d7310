package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rohits-web03/sharelink/internal/services"
)

// GET /download/{token}
// Download godoc
// @Summary Download the file behind a share link
// @Description Streams the file and counts one download. A single "bytes=start-end" range is honoured; other range forms are ignored.
// @Tags Download
// @Produce octet-stream
// @Param token path string true "Share token"
// @Param Range header string false "Byte range, e.g. bytes=0-99"
// @Param X-Share-Password header string false "Link password"
// @Param X-Share-Pin header string false "Link PIN"
// @Success 200 {file} file "Full content"
// @Success 206 {file} file "Partial content"
// @Failure 401 {object} utils.Payload "Password or PIN required"
// @Failure 404 {object} utils.Payload "Unknown link or missing file"
// @Failure 410 {object} utils.Payload "Link expired or download limit reached"
// @Failure 416 {object} utils.Payload "Range not satisfiable"
// @Router /download/{token} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		// a HEAD would otherwise consume a download
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token := r.PathValue("token")
	ip := clientIP(r)
	d, err := h.downloads.Resolve(r.Context(), token, services.DownloadRequest{
		ClientIP: ip,
		Password: secret(r, "X-Share-Password", "password"),
		PIN:      secret(r, "X-Share-Pin", "pin"),
		Range:    r.Header.Get("Range"),
	})
	if err != nil {
		var rangeErr *services.RangeError
		if errors.As(err, &rangeErr) {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", rangeErr.Size))
		}
		h.audit(r, services.AuditEvent{
			Type: services.EventDownload, Actor: "public", ResourceType: "link", ResourceID: token, Action: "read",
			Details: map[string]any{"error": err.Error()},
		})
		h.writeError(w, r, err)
		return
	}
	body := d.Body
	defer body.Close()

	hdr := w.Header()
	hdr.Set("Content-Type", d.MimeType)
	hdr.Set("Content-Length", strconv.FormatInt(d.ContentLength(), 10))
	hdr.Set("Content-Disposition", contentDisposition(d.FileName))
	hdr.Set("Accept-Ranges", "bytes")
	hdr.Set("Cache-Control", "no-cache")
	status := http.StatusOK
	if d.Range != nil {
		hdr.Set("Content-Range", d.Range.ContentRange(d.Size))
		status = http.StatusPartialContent
	}
	w.WriteHeader(status)

	n, err := io.Copy(w, body)
	if err != nil {
		if !errors.Is(err, context.Canceled) && r.Context().Err() == nil {
			h.logger.Warn("download interrupted", "error", err, "bytes", n)
		}
		return
	}
	h.audit(r, services.AuditEvent{
		Type: services.EventDownload, Actor: "public", ResourceType: "link", ResourceID: token, Action: "read", Success: true,
		Details: map[string]any{"bytes": n, "partial": d.Range != nil, "count": d.Link.DownloadCount},
	})
}

// secret reads a link secret from its header, falling back to a query parameter.
func secret(r *http.Request, header, param string) string {
	if v := r.Header.Get(header); v != "" {
		return v
	}
	return r.URL.Query().Get(param)
}

func contentDisposition(name string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, escaped, escaped)
}
