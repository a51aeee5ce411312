package usecase

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/tendermatch/backend/internal/domain"
)

// Default contribution weights for required and optional characteristics.
// The final score is renormalized, so only their ratio matters.
const (
	defaultRequiredWeight = 0.7
	defaultOptionalWeight = 0.3
)

type synonymGroup struct {
	canonical string
	variants  []string
}

// characteristicSynonyms maps canonical characteristic names to the variants
// seen in tender and catalog data. Order matters: the first group with a
// matching variant wins, keeping normalization deterministic.
var characteristicSynonyms = []synonymGroup{
	// Dimensions
	{"ширина", []string{"ширина", "width"}},
	{"длина", []string{"длина", "length", "длина намотки"}},
	{"высота", []string{"высота", "height"}},
	{"толщина", []string{"толщина", "thickness"}},
	{"диаметр", []string{"диаметр", "diameter"}},

	// Weight and volume
	{"масса", []string{"масса", "вес", "weight", "mass"}},
	{"объем", []string{"объем", "объём", "volume"}},
	{"плотность", []string{"плотность", "density", "плотность картона"}},

	// Color and material
	{"цвет", []string{"цвет", "color", "colour"}},
	{"материал", []string{"материал", "material"}},
	{"тип", []string{"тип", "вид", "type"}},

	// Misc
	{"количество", []string{"количество", "кол-во", "count", "quantity"}},
	{"прозрачность", []string{"прозрачность", "transparency"}},
	{"формат", []string{"формат", "format"}},
	{"механизм", []string{"механизм", "mechanism"}},
}

// unitConversions holds multiplicative factors between measurement units:
// factor = unitConversions[from][to].
var unitConversions = map[string]map[string]float64{
	"мм": {"см": 0.1, "м": 0.001},
	"см": {"мм": 10, "м": 0.01},
	"м":  {"мм": 1000, "см": 100},
	"г":  {"кг": 0.001},
	"кг": {"г": 1000},
	"мл": {"л": 0.001},
	"л":  {"мл": 1000},
}

// unitAnnotationRe strips trailing unit annotations from characteristic
// names ("Ширина, мм" -> "Ширина").
var unitAnnotationRe = regexp.MustCompile(`(?i)[,(]\s*(мм|см|м|кг|г|л|мл|шт|%)\.?\s*\)?\s*$`)

// ScorerConfig holds the characteristic weighting for the item scorer.
type ScorerConfig struct {
	RequiredWeight float64
	OptionalWeight float64
}

// ItemScorer scores one candidate product against one tender item.
// Classification-code agreement is the retrieval precondition and is not
// scored again here.
type ItemScorer struct {
	requiredWeight float64
	optionalWeight float64
	log            *zap.Logger
}

// NewItemScorer creates an item scorer with the given weighting.
func NewItemScorer(config ScorerConfig, log *zap.Logger) *ItemScorer {
	rw := config.RequiredWeight
	ow := config.OptionalWeight
	if rw <= 0 {
		rw = defaultRequiredWeight
	}
	if ow <= 0 {
		ow = defaultOptionalWeight
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ItemScorer{
		requiredWeight: rw,
		optionalWeight: ow,
		log:            log,
	}
}

// plannedCharacteristic is a tender characteristic with its value expression
// parsed once, reused across all candidates of the item.
type plannedCharacteristic struct {
	name      string
	condition Condition
	unit      string
	required  bool
}

// ItemPlan is a tender item prepared for scoring: characteristic names
// normalized and value expressions parsed.
type ItemPlan struct {
	scorer          *ItemScorer
	characteristics []plannedCharacteristic
	requiredTotal   int
	optionalTotal   int
}

// Plan prepares a tender item for scoring against many candidates.
func (s *ItemScorer) Plan(item *domain.TenderItem) *ItemPlan {
	plan := &ItemPlan{scorer: s}

	for _, ch := range item.Characteristics {
		cond := ParseCondition(ch.Value, ch.Type)
		if cond.Kind == ConditionUnparsed {
			s.log.Warn("unparseable characteristic expression, falling back to text comparison",
				zap.Int("item_id", item.ID),
				zap.String("characteristic", ch.Name),
				zap.String("value", ch.Value))
		}
		plan.characteristics = append(plan.characteristics, plannedCharacteristic{
			name:      NormalizeCharacteristicName(ch.Name),
			condition: cond,
			unit:      strings.ToLower(strings.TrimSpace(ch.Unit)),
			required:  ch.Required,
		})
		if ch.Required {
			plan.requiredTotal++
		} else {
			plan.optionalTotal++
		}
	}

	return plan
}

// Score computes the candidate's match score in [0,1] and whether it is
// eligible at all. Every required characteristic must be satisfied for the
// candidate to be eligible; optional characteristics only raise the score.
// Missing or malformed candidate data scores as a non-match for that one
// characteristic, never as an error.
func (p *ItemPlan) Score(product *domain.CatalogProduct) (float64, bool) {
	if len(p.characteristics) == 0 {
		// No requirements: any code-matched product fits.
		return 1.0, true
	}

	attrs := make(map[string]domain.ProductAttribute, len(product.Attributes))
	for _, attr := range product.Attributes {
		key := NormalizeCharacteristicName(attr.Name)
		if _, exists := attrs[key]; !exists {
			attrs[key] = attr
		}
	}

	var requiredMatched, optionalMatched int
	eligible := true

	for _, pc := range p.characteristics {
		attr, found := attrs[pc.name]
		matched := false
		if found {
			factor := conversionFactor(strings.ToLower(strings.TrimSpace(attr.Unit)), pc.unit)
			matched = satisfiesScaled(pc.condition, attr.Value, factor)
		}

		if matched {
			if pc.required {
				requiredMatched++
			} else {
				optionalMatched++
			}
		} else if pc.required {
			eligible = false
		}
	}

	return p.score(requiredMatched, optionalMatched), eligible
}

// score combines the required and optional match fractions. When the item
// has only one kind of characteristic the other weight drops out, so a
// perfect match is always exactly 1.0.
func (p *ItemPlan) score(requiredMatched, optionalMatched int) float64 {
	switch {
	case p.requiredTotal == 0:
		return float64(optionalMatched) / float64(p.optionalTotal)
	case p.optionalTotal == 0:
		return float64(requiredMatched) / float64(p.requiredTotal)
	}

	requiredFraction := float64(requiredMatched) / float64(p.requiredTotal)
	optionalFraction := float64(optionalMatched) / float64(p.optionalTotal)
	rw, ow := p.scorer.requiredWeight, p.scorer.optionalWeight
	return (requiredFraction*rw + optionalFraction*ow) / (rw + ow)
}

// Score is the single-candidate convenience form of Plan + ItemPlan.Score.
func (s *ItemScorer) Score(item *domain.TenderItem, product *domain.CatalogProduct) (float64, bool) {
	return s.Plan(item).Score(product)
}

// NormalizeCharacteristicName maps a free-text characteristic name to its
// canonical lookup key: synonym table first, otherwise lower-cased with unit
// annotations and separator noise removed.
func NormalizeCharacteristicName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	for _, group := range characteristicSynonyms {
		for _, variant := range group.variants {
			if strings.Contains(lower, variant) {
				return group.canonical
			}
		}
	}

	lower = unitAnnotationRe.ReplaceAllString(lower, "")
	lower = strings.NewReplacer("_", " ", "-", " ").Replace(lower)
	return strings.TrimSpace(multiSpacesRe.ReplaceAllString(lower, " "))
}

// conversionFactor returns the factor converting the candidate's unit into
// the tender's unit, 1 when units agree or no conversion is known.
func conversionFactor(from, to string) float64 {
	if from == "" || to == "" || from == to {
		return 1
	}
	if factors, ok := unitConversions[from]; ok {
		if factor, ok := factors[to]; ok {
			return factor
		}
	}
	return 1
}
