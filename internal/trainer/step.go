package trainer

import (
	"errors"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"curve-gan/internal/autodiff"
	"curve-gan/internal/dataset"
	"curve-gan/internal/model"
	"curve-gan/internal/optim"
)

// Diagnostics is what one step reports.
type Diagnostics struct {
	Step  int
	DLoss float64
	GLoss float64
	// Confidence is the discriminator's mean probability-of-real on the real
	// batch. It is not thresholded.
	Confidence float64
	// Sample is the first curve of the step's generated batch.
	Sample  []float64
	Skipped bool
	Reason  string
}

// DScore is the sign-negated discriminator loss shown to the viewer.
func (d Diagnostics) DScore() float64 { return -d.DLoss }

// Trainer owns the state that persists across steps: both models and both
// optimizers. Everything else lives in the arena for a single step.
type Trainer struct {
	cfg       RunConfig
	rng       *rand.Rand
	arena     *autodiff.Arena
	paintings *dataset.Paintings

	gen  model.Model
	disc model.Model
	optG *optim.Adam
	optD *optim.Adam
}

// New initializes the generator, then the discriminator, from cfg.Seed.
func New(cfg RunConfig) (*Trainer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	paintings, err := dataset.NewPaintings(dataset.PaintingOptions{
		BatchSize:     cfg.BatchSize,
		ArtComponents: cfg.ArtComponents,
		DomainMin:     cfg.DomainMin,
		DomainMax:     cfg.DomainMax,
	}, rng)
	if err != nil {
		return nil, err
	}
	gen := model.NewGenerator(cfg.NIdeas, cfg.HiddenUnits, cfg.ArtComponents, rng)
	disc := model.NewDiscriminator(cfg.ArtComponents, cfg.HiddenUnits, rng)
	return &Trainer{
		cfg:       cfg,
		rng:       rng,
		arena:     autodiff.NewArena(),
		paintings: paintings,
		gen:       gen,
		disc:      disc,
		optG:      optim.NewAdam(gen.Params(), cfg.LRG),
		optD:      optim.NewAdam(disc.Params(), cfg.LRD),
	}, nil
}

// Generator returns the generator model.
func (t *Trainer) Generator() model.Model { return t.gen }

// Discriminator returns the discriminator model.
func (t *Trainer) Discriminator() model.Model { return t.disc }

// Points returns the evaluation points of the curves.
func (t *Trainer) Points() []float64 { return t.paintings.Points() }

// Step runs one full iteration: sample, update the discriminator, update the
// generator, diagnose. A non-finite loss or gradient skips the affected
// update and marks the step Skipped. Any other error is fatal for the run.
// All step buffers are released on return.
func (t *Trainer) Step(step int) (Diagnostics, error) {
	defer t.arena.Release()
	diag := Diagnostics{Step: step}

	reals := t.paintings.Sample(t.arena)
	ideas := autodiff.Normal(t.arena, t.rng, t.cfg.BatchSize, t.cfg.NIdeas)

	fake, err := t.generate(ideas)
	if err != nil {
		return diag, err
	}

	diag.DLoss, err = t.updateDiscriminator(reals, fake)
	if err := diag.skipOn("discriminator", err); err != nil {
		return diag, err
	}

	diag.GLoss, err = t.updateGenerator(ideas)
	if err := diag.skipOn("generator", err); err != nil {
		return diag, err
	}

	diag.Confidence, err = t.confidence(reals)
	if err != nil {
		return diag, err
	}
	diag.Sample = mat.Row(nil, 0, fake)
	if !autodiff.IsFinite(diag.Confidence) || !autodiff.AllFinite(diag.Sample) {
		diag.skip("diagnostics: non-finite output")
	}
	return diag, nil
}

// generate evaluates the generator once without recording gradients. The
// result is shared by the discriminator update and the diagnostics.
func (t *Trainer) generate(ideas *mat.Dense) (*mat.Dense, error) {
	tape := autodiff.NewTape(t.arena, nil)
	out := t.gen.Forward(tape, tape.Constant(ideas))
	if err := tape.Err(); err != nil {
		return nil, err
	}
	return out.Value(), nil
}

func (t *Trainer) updateDiscriminator(reals, fake *mat.Dense) (float64, error) {
	tape := autodiff.NewTape(t.arena, t.disc.Params())
	pReal := t.disc.Forward(tape, tape.Constant(reals))
	pFake := t.disc.Forward(tape, tape.Constant(fake))
	loss := discriminatorLoss(tape, pFake, pReal)
	grads, err := tape.Gradients(loss)
	if err != nil {
		return loss.Scalar(), err
	}
	return loss.Scalar(), t.optD.Step(grads)
}

// updateGenerator differentiates with respect to generator parameters only;
// the discriminator is frozen and enters the tape as constants.
func (t *Trainer) updateGenerator(ideas *mat.Dense) (float64, error) {
	tape := autodiff.NewTape(t.arena, t.gen.Params())
	pFake := t.disc.Forward(tape, t.gen.Forward(tape, tape.Constant(ideas)))
	loss := generatorLoss(tape, pFake)
	grads, err := tape.Gradients(loss)
	if err != nil {
		return loss.Scalar(), err
	}
	return loss.Scalar(), t.optG.Step(grads)
}

func (t *Trainer) confidence(reals *mat.Dense) (float64, error) {
	tape := autodiff.NewTape(t.arena, nil)
	p := t.disc.Forward(tape, tape.Constant(reals))
	if err := tape.Err(); err != nil {
		return 0, err
	}
	data := p.Value().RawMatrix().Data
	return floats.Sum(data) / float64(len(data)), nil
}

func (d *Diagnostics) skip(reason string) {
	d.Skipped = true
	if d.Reason == "" {
		d.Reason = reason
		return
	}
	d.Reason = strings.Join([]string{d.Reason, reason}, "; ")
}

// skipOn absorbs numeric degeneracy from an update and returns anything else.
func (d *Diagnostics) skipOn(phase string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, autodiff.ErrNonFinite) || errors.Is(err, optim.ErrNonFinite) {
		d.skip(phase + ": " + err.Error())
		return nil
	}
	return err
}
