package server

import (
	"net/http"

	"news_ingest/internal/db"
	"news_ingest/internal/logger"
	"news_ingest/internal/models"
)

// Publisher публикует задачи в очередь.
type Publisher interface {
	PublishTask(queueName string, task models.Task) error
}

// Server хранит зависимости HTTP-обработчиков: БД для health-проверки
// и продюсер очереди для административных триггеров.
type Server struct {
	db        *db.Database
	producer  Publisher
	queueName string
}

func NewServer(database *db.Database, producer Publisher, queueName string) *Server {
	return &Server{db: database, producer: producer, queueName: queueName}
}

// HealthCheck отвечает 200 OK, если база доступна, иначе 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Pool.Ping(r.Context()); err != nil {
		http.Error(w, "DB unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("OK"))
}

// TriggerFetch ставит fetch-задачу для источника по требованию.
// Повторный вызов безопасен: дубликат схлопнется о лизинг в воркере.
func (s *Server) TriggerFetch(w http.ResponseWriter, r *http.Request) {
	s.trigger(w, r, models.TaskFetch)
}

// TriggerSync ставит задачу синхронизации категорий по требованию.
func (s *Server) TriggerSync(w http.ResponseWriter, r *http.Request) {
	s.trigger(w, r, models.TaskSyncCategories)
}

func (s *Server) trigger(w http.ResponseWriter, r *http.Request, kind string) {
	source := r.PathValue("source")
	if source == "" {
		http.Error(w, "source is required", http.StatusBadRequest)
		return
	}

	task := models.Task{Kind: kind, Source: source}
	if err := s.producer.PublishTask(s.queueName, task); err != nil {
		logger.WithSource(source).Errorf("Failed to publish %s task: %v", kind, err)
		http.Error(w, "failed to enqueue task", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("queued"))
}
