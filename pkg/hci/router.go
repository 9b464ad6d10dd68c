package hci

import (
	"sync"

	"github.com/pion/logging"
)

// CommandHandler handles one family of host commands.
type CommandHandler interface {
	// HandleCommand processes a command and reports whether the opcode
	// belongs to the handler's family.
	HandleCommand(op Opcode, data []byte) bool
}

// CommandHandlerFunc adapts a function to CommandHandler.
type CommandHandlerFunc func(op Opcode, data []byte) bool

// HandleCommand implements CommandHandler.
func (f CommandHandlerFunc) HandleCommand(op Opcode, data []byte) bool {
	return f(op, data)
}

// Router offers each command to its handlers in registration order until
// one claims it.
type Router struct {
	mu       sync.RWMutex
	handlers []CommandHandler
	log      logging.LeveledLogger
}

// NewRouter creates an empty router.
func NewRouter(loggerFactory logging.LoggerFactory) *Router {
	r := &Router{}
	if loggerFactory != nil {
		r.log = loggerFactory.NewLogger("hci")
	}
	return r
}

// Add registers a handler.
func (r *Router) Add(h CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
}

// Route dispatches a command and reports whether any handler claimed it.
func (r *Router) Route(op Opcode, data []byte) bool {
	r.mu.RLock()
	handlers := r.handlers
	r.mu.RUnlock()

	for _, h := range handlers {
		if h.HandleCommand(op, data) {
			return true
		}
	}

	if r.log != nil {
		r.log.Debugf("unhandled command %s (%d bytes)", op, len(data))
	}
	return false
}
