package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/healio/chat-backend/internal/apierror"
)

// ChunkStream is a forward-only sequence of completion chunks. Recv returns
// io.EOF when the upstream sequence is exhausted. *openai.ChatCompletionStream
// satisfies it.
type ChunkStream interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

// WriteNDJSON drains the chunk stream into w as newline-delimited JSON, one
// frame per chunk in arrival order. The next chunk is requested only after
// the previous frame has been written and flushed, so upstream pacing is
// coupled to downstream consumption and at most one chunk is held in memory.
//
// A nil return means the upstream sequence ended cleanly; the end of the
// byte stream is the client's termination signal, no sentinel is appended.
// A non-nil return means the stream broke after bytes may already have been
// flushed — the caller can only log it and drop the connection.
func WriteNDJSON(w io.Writer, stream ChunkStream, meta HistoryMetadata) error {
	defer stream.Close()

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return apierror.Wrap(apierror.KindUpstreamStream, "completion stream interrupted", err)
		}
		// Encode appends exactly one trailing newline per frame and the
		// frame itself contains none, preserving the NDJSON contract.
		if err := enc.Encode(FrameFromChunk(chunk, meta)); err != nil {
			return apierror.Wrap(apierror.KindUpstreamStream, "write frame", err)
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
