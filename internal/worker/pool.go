package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"kiosco/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueVentas = "jobs:ventas"
	QueueEmail  = "jobs:email"

	TipoVentaLiquidada = "venta_liquidada"
	TipoEmailCierre    = "email_cierre"

	maxIntentos = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Intentos int             `json:"intentos"`
}

// Procesador handles the payload of one job type. A returned error schedules a
// retry until maxIntentos, then the job goes to the DLQ.
type Procesador interface {
	Procesar(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists. It implements
// service.PublicadorEventos and service.EncoladorEmail.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

func (d *Dispatcher) PublicarVentaLiquidada(ctx context.Context, e dto.VentaLiquidadaEvento) error {
	return d.enqueue(ctx, QueueVentas, TipoVentaLiquidada, e)
}

func (d *Dispatcher) EncolarEmailCierre(ctx context.Context, job dto.EmailCierreJob) error {
	return d.enqueue(ctx, QueueEmail, TipoEmailCierre, job)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// ── Pool ──────────────────────────────────────────────────────────────────────

// Pool runs goroutines blocked on BRPOP over every registered queue.
type Pool struct {
	rdb          *redis.Client
	procesadores map[string]Procesador // by job type
	colas        []string
	wg           sync.WaitGroup
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, procesadores: make(map[string]Procesador)}
}

// Registrar binds a job type to its queue and processor. Call before Start.
func (p *Pool) Registrar(queue, jobType string, proc Procesador) {
	p.procesadores[jobType] = proc
	for _, q := range p.colas {
		if q == queue {
			return
		}
	}
	p.colas = append(p.colas, queue)
}

// Start launches numWorkers goroutines. Each one blocks on BRPOP, so idle
// workers cost nothing. They exit when ctx is cancelled; Wait blocks until then.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Strs("colas", p.colas).Msg("worker pool iniciado")
}

func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		if ctx.Err() != nil {
			log.Info().Int("worker", id).Msg("worker detenido")
			return
		}
		// waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, p.colas...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("BRPOP falló")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.procesar(ctx, result[0], result[1])
	}
}

func (p *Pool) procesar(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("job ilegible")
		aDLQ(ctx, p.rdb, queue, Job{Payload: json.RawMessage(raw)}, "payload inválido: "+err.Error())
		return
	}
	proc, ok := p.procesadores[job.Type]
	if !ok {
		aDLQ(ctx, p.rdb, queue, job, "tipo de job sin procesador")
		return
	}

	err := ejecutarSeguro(ctx, proc, job.Payload)
	if err == nil {
		return
	}
	job.Intentos++
	if job.Intentos >= maxIntentos || errors.Is(err, ErrDescartar) {
		aDLQ(ctx, p.rdb, queue, job, err.Error())
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("intento", job.Intentos).Msg("job reencolado")
	if perr := push(context.WithoutCancel(ctx), p.rdb, queue, job); perr != nil {
		log.Error().Err(perr).Str("queue", queue).Msg("no se pudo reencolar el job")
	}
}

// ErrDescartar marks a failure that retrying cannot fix.
var ErrDescartar = errors.New("job descartado")

func ejecutarSeguro(ctx context.Context, proc Procesador, payload json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("panic en procesador de jobs")
			err = errors.Join(ErrDescartar, errors.New("panic en procesador"))
		}
	}()
	return proc.Procesar(ctx, payload)
}
