package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

const DefaultMaxConnections = 10

var ErrClosed = errors.New("pool closed")

// Dialer abre uma nova conexão física.
type Dialer func(ctx context.Context) (*sqlx.DB, error)

// Conn é uma conexão emprestada pelo pool. Só quem fez Checkout pode usá-la até o Release.
type Conn struct {
	id   uint64
	db   *sqlx.DB
	held atomic.Bool
}

func (c *Conn) ID() uint64 { return c.id }
func (c *Conn) DB() *sqlx.DB { return c.db }

type Stats struct {
	Idle    int   `json:"idle"`
	InUse   int64 `json:"in_use"`
	Created int64 `json:"created"`
	Closed  int64 `json:"closed"`
}

type Pool struct {
	idle chan *Conn
	dial Dialer
	log  zerolog.Logger

	nextID  atomic.Uint64
	inUse   atomic.Int64
	created atomic.Int64
	closed  atomic.Int64

	// shut é protegido por mu; Release segura RLock durante o envio para idle
	// para que Close não perca conexões devolvidas em paralelo.
	mu   sync.RWMutex
	shut bool
}

type Option func(*Pool)

func WithLogger(l zerolog.Logger) Option {
	return func(p *Pool) { p.log = l }
}

func New(dial Dialer, maxConnections int, opts ...Option) *Pool {
	if maxConnections <= 0 {
		maxConnections = DefaultMaxConnections
	}
	p := &Pool{
		idle: make(chan *Conn, maxConnections),
		dial: dial,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pool) MaxConnections() int { return cap(p.idle) }

// Checkout devolve uma conexão ociosa ou abre uma nova. Nunca bloqueia esperando vaga.
func (p *Pool) Checkout(ctx context.Context) (*Conn, error) {
	p.mu.RLock()
	shut := p.shut
	p.mu.RUnlock()
	if shut {
		return nil, ErrClosed
	}

	select {
	case c := <-p.idle:
		c.held.Store(true)
		p.inUse.Add(1)
		return c, nil
	default:
	}

	db, err := p.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("pool: dial: %w", err)
	}
	c := &Conn{id: p.nextID.Add(1), db: db}
	c.held.Store(true)
	p.created.Add(1)
	p.inUse.Add(1)
	return c, nil
}

// Release devolve a conexão. Se já houver maxConnections ociosas (ou o pool estiver
// fechado) a conexão é fechada. Release duplicado é ignorado.
func (p *Pool) Release(c *Conn) {
	if c == nil {
		return
	}
	if !c.held.CompareAndSwap(true, false) {
		p.log.Warn().Uint64("conn", c.id).Msg("release of a connection that is not checked out")
		return
	}
	p.inUse.Add(-1)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.shut {
		p.closeConn(c)
		return
	}
	select {
	case p.idle <- c:
	default:
		p.closeConn(c)
	}
}

// WithConnection faz Checkout, chama fn e devolve a conexão em qualquer saída,
// inclusive panic (que segue propagando depois do Release).
func (p *Pool) WithConnection(ctx context.Context, fn func(*Conn) error) error {
	c, err := p.Checkout(ctx)
	if err != nil {
		return err
	}
	defer p.Release(c)
	return fn(c)
}

// Close fecha as conexões ociosas; as que estiverem emprestadas são fechadas no Release.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shut {
		return nil
	}
	p.shut = true

	var errs []error
	for {
		select {
		case c := <-p.idle:
			if err := c.db.Close(); err != nil {
				errs = append(errs, err)
			}
			p.closed.Add(1)
		default:
			return errors.Join(errs...)
		}
	}
}

func (p *Pool) Stats() Stats {
	return Stats{
		Idle:    len(p.idle),
		InUse:   p.inUse.Load(),
		Created: p.created.Load(),
		Closed:  p.closed.Load(),
	}
}

func (p *Pool) closeConn(c *Conn) {
	if err := c.db.Close(); err != nil {
		p.log.Warn().Err(err).Uint64("conn", c.id).Msg("close connection")
	}
	p.closed.Add(1)
}
