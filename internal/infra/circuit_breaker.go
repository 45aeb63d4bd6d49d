package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Disyuntor ─────────────────────────────────────────────────────────────────
// Guards an unreliable outbound dependency (the SMTP relay). After
// UmbralFallos consecutive failures it opens and fails fast; once Espera has
// elapsed it lets calls through again (half-open) and closes after
// UmbralExitos consecutive successes.

type EstadoDisyuntor int

const (
	DisyuntorCerrado EstadoDisyuntor = iota
	DisyuntorAbierto
	DisyuntorSemiAbierto
)

func (s EstadoDisyuntor) String() string {
	switch s {
	case DisyuntorCerrado:
		return "closed"
	case DisyuntorAbierto:
		return "open"
	case DisyuntorSemiAbierto:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrDisyuntorAbierto = errors.New("disyuntor abierto")

type ConfigDisyuntor struct {
	UmbralFallos int
	UmbralExitos int
	Espera       time.Duration
}

// ConfigDisyuntorSMTP tolerates a short relay outage before fast-failing.
func ConfigDisyuntorSMTP() ConfigDisyuntor {
	return ConfigDisyuntor{UmbralFallos: 3, UmbralExitos: 1, Espera: 2 * time.Minute}
}

type Disyuntor struct {
	mu          sync.Mutex
	estado      EstadoDisyuntor
	fallos      int
	exitos      int
	ultimoFallo time.Time
	cfg         ConfigDisyuntor
	ahora       func() time.Time
}

func NewDisyuntor(cfg ConfigDisyuntor) *Disyuntor {
	if cfg.UmbralFallos <= 0 {
		cfg.UmbralFallos = 5
	}
	if cfg.UmbralExitos <= 0 {
		cfg.UmbralExitos = 1
	}
	if cfg.Espera <= 0 {
		cfg.Espera = time.Minute
	}
	return &Disyuntor{cfg: cfg, ahora: time.Now}
}

func (d *Disyuntor) Estado() EstadoDisyuntor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.estadoLocked()
}

func (d *Disyuntor) estadoLocked() EstadoDisyuntor {
	if d.estado == DisyuntorAbierto && d.ahora().Sub(d.ultimoFallo) >= d.cfg.Espera {
		d.estado = DisyuntorSemiAbierto
		d.exitos = 0
	}
	return d.estado
}

// Ejecutar runs fn unless the breaker is open.
func (d *Disyuntor) Ejecutar(fn func() error) error {
	d.mu.Lock()
	abierto := d.estadoLocked() == DisyuntorAbierto
	d.mu.Unlock()
	if abierto {
		return ErrDisyuntorAbierto
	}

	err := fn()

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.fallos++
		d.ultimoFallo = d.ahora()
		if d.estado == DisyuntorSemiAbierto || d.fallos >= d.cfg.UmbralFallos {
			d.estado = DisyuntorAbierto
			d.fallos = 0
		}
		return err
	}
	switch d.estado {
	case DisyuntorCerrado:
		d.fallos = 0
	case DisyuntorSemiAbierto:
		d.exitos++
		if d.exitos >= d.cfg.UmbralExitos {
			d.estado = DisyuntorCerrado
			d.fallos, d.exitos = 0, 0
		}
	}
	return nil
}
