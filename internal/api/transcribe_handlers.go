package api

import (
	"net/http"
)

// maxAudioUpload caps recording uploads at 25 MB, matching the provider's
// own file size limit.
const maxAudioUpload = 25 << 20

// POST /api/transcribe — multipart field "audio".
func (rt *Router) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "audio file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	text, err := rt.transcription.Transcribe(r.Context(), file, header.Filename, header.Size)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// POST /api/upload-audio — multipart field "audio", auth required.
func (rt *Router) handleUploadAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "audio file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	url, err := rt.transcription.StoreAudio(file, header.Filename, header.Size)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
