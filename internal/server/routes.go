package server

import (
	"net/http"

	"pulseboard/internal/handler"
	"pulseboard/internal/middleware"
)

func NewMux(
	widgets *handler.WidgetsHandler,
	documents *handler.DocumentsHandler,
	weather *handler.WeatherHandler,
	streams *handler.StreamsHandler,
	feed *handler.FeedHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api/widgets", widgets)
	mux.Handle("/api/documents", documents)
	mux.Handle("/api/weather", weather)

	mux.HandleFunc("/api/streams/start", streams.HandleStart)
	mux.HandleFunc("/api/streams/stop", streams.HandleStop)
	mux.HandleFunc("/api/streams", streams.HandleList)

	mux.Handle("/api/ws", feed)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return middleware.CORS(mux)
}
