package material

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/warp"
)

// Principled is a Disney-style layered BSDF: a retro-reflective diffuse base with sheen,
// a GGX (GTR2) specular lobe and a GTR1 clearcoat. Sampling picks one lobe and the pdf is
// the mixture of all lobe densities, so Sample, Eval and Pdf stay consistent.
type Principled struct {
	BaseColor      ColorSource
	Metallic       float64
	Roughness      float64
	Specular       float64
	SpecularTint   float64
	Sheen          float64
	SheenTint      float64
	Clearcoat      float64
	ClearcoatGloss float64
}

// PrincipledConfig holds the artist parameters, each in [0, 1]
type PrincipledConfig struct {
	Metallic       float64
	Roughness      float64
	Specular       float64
	SpecularTint   float64
	Sheen          float64
	SheenTint      float64
	Clearcoat      float64
	ClearcoatGloss float64
}

// DefaultPrincipledConfig returns a rough dielectric look
func DefaultPrincipledConfig() PrincipledConfig {
	return PrincipledConfig{
		Roughness:      0.5,
		Specular:       0.5,
		SheenTint:      0.5,
		ClearcoatGloss: 1,
	}
}

// NewPrincipled creates a principled BSDF, clamping parameters to [0, 1]
func NewPrincipled(baseColor ColorSource, config PrincipledConfig) *Principled {
	clamp := func(v float64) float64 { return max(0, min(1, v)) }
	return &Principled{
		BaseColor:      baseColor,
		Metallic:       clamp(config.Metallic),
		Roughness:      clamp(config.Roughness),
		Specular:       clamp(config.Specular),
		SpecularTint:   clamp(config.SpecularTint),
		Sheen:          clamp(config.Sheen),
		SheenTint:      clamp(config.SheenTint),
		Clearcoat:      clamp(config.Clearcoat),
		ClearcoatGloss: clamp(config.ClearcoatGloss),
	}
}

func lerp(t, a, b float64) float64 {
	return (1-t)*a + t*b
}

func lerpVec(t float64, a, b core.Vec3) core.Vec3 {
	return a.Multiply(1 - t).Add(b.Multiply(t))
}

// smithGGGX is the separable Smith term divided by 2·cos, so that the product of two
// of them already contains the 1/(4 cosI cosO) microfacet normalization.
func smithGGGX(cosTheta, alpha float64) float64 {
	a := alpha * alpha
	c := cosTheta * cosTheta
	return 1 / (cosTheta + math.Sqrt(a+c-a*c))
}

func (p *Principled) specularAlpha() float64 {
	return max(0.001, p.Roughness*p.Roughness)
}

func (p *Principled) clearcoatAlpha() float64 {
	return lerp(p.ClearcoatGloss, 0.1, 0.001)
}

// lobeProbabilities returns the selection probabilities for the diffuse, specular and clearcoat lobes
func (p *Principled) lobeProbabilities() (diffuse, specular, clearcoat float64) {
	diffuse = 1 - p.Metallic
	specular = 1
	clearcoat = 0.25 * p.Clearcoat
	total := diffuse + specular + clearcoat
	return diffuse / total, specular / total, clearcoat / total
}

func (p *Principled) Eval(q *BSDFQuery) core.Vec3 {
	if q.Measure != MeasureSolidAngle || !sameHemisphereUp(q) {
		return core.Vec3{}
	}
	cosV, cosL := core.CosTheta(q.Wi), core.CosTheta(q.Wo)
	h := q.Wi.Add(q.Wo).Normalize()
	cosH := core.CosTheta(h)
	cosD := q.Wo.Dot(h)

	base := p.BaseColor.Evaluate(q.UV, q.Point)
	tint := core.NewVec3(1, 1, 1)
	if lum := base.Luminance(); lum > 0 {
		tint = base.Multiply(1 / lum)
	}
	white := core.NewVec3(1, 1, 1)

	// Diffuse with Burley retro-reflection
	fl, fv := SchlickWeight(cosL), SchlickWeight(cosV)
	fd90 := 0.5 + 2*p.Roughness*cosD*cosD
	fd := lerp(fl, 1, fd90) * lerp(fv, 1, fd90)
	diffuse := base.Multiply(fd / math.Pi)

	// Sheen
	fh := SchlickWeight(cosD)
	sheen := lerpVec(p.SheenTint, white, tint).Multiply(fh * p.Sheen)

	// Specular
	spec0 := lerpVec(p.Metallic, lerpVec(p.SpecularTint, white, tint).Multiply(p.Specular*0.08), base)
	alpha := p.specularAlpha()
	ds := warp.GTR2D(cosH, alpha)
	fs := lerpVec(fh, spec0, white)
	gs := smithGGGX(cosL, alpha) * smithGGGX(cosV, alpha)
	specular := fs.Multiply(gs * ds)

	// Clearcoat
	dr := warp.GTR1D(cosH, p.clearcoatAlpha())
	fr := lerp(fh, 0.04, 1)
	gr := smithGGGX(cosL, 0.25) * smithGGGX(cosV, 0.25)
	clearcoat := 0.25 * p.Clearcoat * gr * fr * dr

	return diffuse.Add(sheen).Multiply(1 - p.Metallic).Add(specular).Add(core.Splat(clearcoat))
}

func (p *Principled) Pdf(q *BSDFQuery) float64 {
	if q.Measure != MeasureSolidAngle || !sameHemisphereUp(q) {
		return 0
	}
	h := q.Wi.Add(q.Wo).Normalize()
	jacobian := 1 / (4 * h.Dot(q.Wo))
	pd, ps, pc := p.lobeProbabilities()

	pdf := pd * warp.SquareToCosineHemispherePdf(q.Wo)
	pdf += ps * warp.SquareToGTR2Pdf(h, p.specularAlpha()) * jacobian
	if pc > 0 {
		pdf += pc * warp.SquareToGTR1Pdf(h, p.clearcoatAlpha()) * jacobian
	}
	return pdf
}

func (p *Principled) Sample(q *BSDFQuery, sample core.Vec2) core.Vec3 {
	if core.CosTheta(q.Wi) <= 0 {
		return core.Vec3{}
	}
	q.Measure = MeasureSolidAngle
	q.Eta = 1

	pd, ps, _ := p.lobeProbabilities()
	switch {
	case sample.X < pd:
		sample.X /= pd
		q.Wo = warp.SquareToCosineHemisphere(sample)
	case sample.X < pd+ps:
		sample.X = (sample.X - pd) / ps
		h := warp.SquareToGTR2(sample, p.specularAlpha())
		q.Wo = core.ReflectAbout(q.Wi, h)
	default:
		sample.X = min((sample.X-pd-ps)/(1-pd-ps), math.Nextafter(1, 0))
		h := warp.SquareToGTR1(sample, p.clearcoatAlpha())
		q.Wo = core.ReflectAbout(q.Wi, h)
	}

	if core.CosTheta(q.Wo) <= 0 {
		return core.Vec3{}
	}
	pdf := p.Pdf(q)
	if pdf <= 0 {
		return core.Vec3{}
	}
	return p.Eval(q).Multiply(core.CosTheta(q.Wo) / pdf)
}

func (p *Principled) IsDiffuse() bool { return p.Metallic < 1 }
