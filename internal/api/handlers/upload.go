package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/rohits-web03/sharelink/internal/services"
	"github.com/rohits-web03/sharelink/internal/utils"
)

// multipart framing allowance on top of MAX_FILE_SIZE
const multipartOverhead = 1 << 20

type shareLinkView struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type uploadResponse struct {
	Complete  bool          `json:"complete"`
	FileID    string        `json:"fileId"`
	FileName  string        `json:"fileName"`
	FileSize  int64         `json:"fileSize"`
	MimeType  string        `json:"mimeType"`
	ExpiresAt time.Time     `json:"expiresAt"`
	ShareLink shareLinkView `json:"shareLink"`
}

type chunkResponse struct {
	Complete    bool `json:"complete"`
	ChunkIndex  int  `json:"chunkIndex"`
	TotalChunks int  `json:"totalChunks"`
	Received    int  `json:"received"`
}

// POST /api/v1/upload
// Upload godoc
// @Summary Upload a file
// @Description Accepts a multipart "file" part, or one chunk of a chunked upload when X-File-Id is set. A share link is issued once the file is complete.
// @Tags Upload
// @Accept multipart/form-data
// @Accept application/octet-stream
// @Produce json
// @Param file formData file false "File to upload"
// @Param X-File-Id header string false "Chunked upload id"
// @Param X-Chunk-Index header int false "Zero-based chunk index"
// @Param X-Total-Chunks header int false "Total number of chunks"
// @Param X-File-Name header string false "Original file name"
// @Param X-Mime-Type header string false "MIME type"
// @Success 201 {object} utils.Payload "File uploaded successfully"
// @Success 200 {object} utils.Payload "Chunk received"
// @Failure 400 {object} utils.Payload "Invalid upload"
// @Failure 403 {object} utils.Payload "Uploads are disabled"
// @Failure 413 {object} utils.Payload "File too large"
// @Failure 415 {object} utils.Payload "File type not allowed"
// @Failure 429 {object} utils.Payload "Too many requests"
// @Router /api/v1/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-File-Id") != "" {
		h.uploadChunk(w, r)
		return
	}
	h.uploadMultipart(w, r)
}

func (h *Handler) uploadMultipart(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Storage.MaxFileSize+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		h.writeError(w, r, badRequest("Expected a multipart upload"))
		return
	}

	part, err := nextFilePart(mr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer part.Close()

	f, err := h.storage.SaveFile(r.Context(), part, -1, part.FileName(), part.Header.Get("Content-Type"))
	if err != nil {
		h.auditUploadFailure(r, part.FileName(), err)
		h.writeError(w, r, err)
		return
	}
	h.completeUpload(w, r, f)
}

// nextFilePart skips form fields until the "file" part.
func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, badRequest("No file provided")
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart: %w", err)
		}
		if part.FormName() == "file" && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

func (h *Handler) uploadChunk(w http.ResponseWriter, r *http.Request) {
	index, err1 := strconv.Atoi(r.Header.Get("X-Chunk-Index"))
	total, err2 := strconv.Atoi(r.Header.Get("X-Total-Chunks"))
	if err1 != nil || err2 != nil {
		h.writeError(w, r, badRequest("Missing or invalid chunk headers"))
		return
	}
	up := services.ChunkUpload{
		FileID:   r.Header.Get("X-File-Id"),
		Index:    index,
		Total:    total,
		Name:     r.Header.Get("X-File-Name"),
		MimeType: r.Header.Get("X-Mime-Type"),
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxChunkBytes()+1)
	progress, err := h.storage.SaveChunk(r.Context(), up, r.Body)
	if err != nil {
		if index == 0 {
			h.auditUploadFailure(r, up.Name, err)
		}
		h.writeError(w, r, err)
		return
	}

	if index < total-1 {
		utils.OK(w, http.StatusOK, "Chunk received", chunkResponse{
			ChunkIndex:  progress.ChunkIndex,
			TotalChunks: progress.TotalChunks,
			Received:    progress.Received,
		})
		return
	}

	f, err := h.storage.FinalizeChunkedUpload(r.Context(), up.FileID, total, up.Name, up.MimeType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.completeUpload(w, r, f)
}

// completeUpload issues the default share link for a stored file.
func (h *Handler) completeUpload(w http.ResponseWriter, r *http.Request, f *models.File) {
	link, _, err := h.links.CreateLink(r.Context(), models.UploadSource(f.ID), services.LinkOptions{})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, services.AuditEvent{
		Type: services.EventUpload, Actor: "admin", ResourceType: "file", ResourceID: f.ID, Action: "create", Success: true,
		Details: map[string]any{"fileName": f.OriginalName, "size": f.Size, "mimeType": f.MimeType},
	})

	utils.OK(w, http.StatusCreated, "File uploaded successfully", uploadResponse{
		Complete:  true,
		FileID:    f.ID,
		FileName:  f.OriginalName,
		FileSize:  f.Size,
		MimeType:  f.MimeType,
		ExpiresAt: f.ExpiresAt,
		ShareLink: shareLinkView{
			Token:     link.Token,
			URL:       h.linkURL(r, link.Token),
			ExpiresAt: link.ExpiresAt,
		},
	})
}

func (h *Handler) auditUploadFailure(r *http.Request, name string, err error) {
	h.audit(r, services.AuditEvent{
		Type: services.EventUpload, Actor: "admin", ResourceType: "file", Action: "create",
		Details: map[string]any{"fileName": name, "error": err.Error()},
	})
}
