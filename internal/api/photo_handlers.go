package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
	"github.com/wishcraft/wishcraft-server/internal/http/response"
	"github.com/wishcraft/wishcraft-server/internal/media/images"
	"github.com/wishcraft/wishcraft-server/internal/wizard"
)

// UploadPhotosResponse reports an upload batch and the resulting state.
type UploadPhotosResponse struct {
	Result wizard.AddResult `json:"result"`
	State  wizard.State     `json:"state"`
}

// handleUploadPhotos adds the files of the "photos" form field to the draft,
// in form order. Files past the five photo cap are read off the wire and
// counted as truncated.
// POST /api/v1/wizard/{id}/photos
func (s *Server) handleUploadPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	wz, err := s.services.Sessions.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBody())
	mr, err := r.MultipartReader()
	if err != nil {
		response.BadRequest(w, "expected a multipart form", s.logger)
		return
	}

	files, skipped, err := s.readPhotoParts(mr)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, domainerrors.CodeValidation, "upload too large", s.logger)
			return
		}
		s.logger.Warn("Failed to read photo upload", "session_id", wz.ID(), "error", err)
		response.BadRequest(w, "malformed multipart form", s.logger)
		return
	}
	if len(files)+skipped == 0 {
		response.BadRequest(w, "no photos in the \""+photoFormField+"\" field", s.logger)
		return
	}

	result, err := wz.AddPhotos(ctx, files)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	result.Truncated += skipped

	s.logger.Debug("Photos uploaded",
		"session_id", wz.ID(),
		"accepted", result.Accepted,
		"truncated", result.Truncated,
		"rejected", result.Rejected,
	)
	response.Success(w, UploadPhotosResponse{Result: result, State: wz.State()}, s.logger)
}

// maxUploadBody bounds one upload request.
func (s *Server) maxUploadBody() int64 {
	return s.cfg.MaxPhotoBytes*maxPhotoFiles + (1 << 20)
}

// readPhotoParts keeps the first wizard.MaxPhotos files of the photo field
// and discards the rest, returning how many were discarded.
func (s *Server) readPhotoParts(mr *multipart.Reader) ([][]byte, int, error) {
	var files [][]byte
	skipped := 0
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return files, skipped, nil
		}
		if err != nil {
			return nil, 0, err
		}

		switch {
		case part.FormName() != photoFormField || part.FileName() == "":
			_, err = io.Copy(io.Discard, part)
		case len(files) < wizard.MaxPhotos:
			var data []byte
			data, err = readPart(part, s.cfg.MaxPhotoBytes)
			if err == nil {
				files = append(files, data)
			}
		default:
			skipped++
			_, err = io.Copy(io.Discard, part)
		}
		part.Close()
		if err != nil {
			return nil, 0, err
		}
	}
}

// readPart reads at most one byte past limit so the converter can reject
// oversized files itself, then drains the rest of the part.
func readPart(part io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(part, limit+1))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(io.Discard, part); err != nil {
		return nil, err
	}
	return data, nil
}

// handleServePhoto serves a stored wish photo.
// GET /photos/{name}
func (s *Server) handleServePhoto(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || s.storage == nil || s.storage.Photos == nil {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}

	data, err := s.storage.Photos.Get(name)
	if err != nil {
		if !errors.Is(err, images.ErrNotFound) {
			s.logger.Debug("Photo lookup failed", "name", name, "error", err)
		}
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}

	contentType, _ := images.DetectType(data)
	w.Header().Set("Content-Type", contentType)
	// Names are content hashes, so a name never changes meaning.
	w.Header().Set("Cache-Control", CacheOneWeek+", immutable")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
