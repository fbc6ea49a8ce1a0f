// Package features defines the feature contract of the attrition model: the
// canonical ordered list of feature names, their kinds, and the typed Vector
// built from untrusted request input.
package features

import (
	"encoding/json"
	"math"
)

// Kind is the semantic type of a feature.
type Kind int

// Feature kinds. Every kind except KindText is carried as a number.
const (
	KindInt Kind = iota
	KindFloat
	KindEnum
	KindRange
	KindText
)

// String returns the kind name used in messages and docs.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	case KindRange:
		return "range"
	case KindText:
		return "string"
	default:
		return "unknown"
	}
}

// Numeric reports whether values of this kind are JSON numbers.
func (k Kind) Numeric() bool { return k != KindText }

// Feature is one entry of the contract.
type Feature struct {
	Name string
	Kind Kind
}

// Canonical feature names.
const (
	Age                          = "age"
	AgeDebutCarriere             = "age_debut_carriere"
	AnneeExperienceTotale        = "annee_experience_totale"
	AnneesDansLEntreprise        = "annees_dans_l_entreprise"
	AnneesDansLePosteActuel      = "annees_dans_le_poste_actuel"
	AnneesDepuisDernierePromo    = "annees_depuis_la_derniere_promotion"
	AnneeDernierePromotion       = "annee_derniere_promotion"
	AnnesSousResponsableActuel   = "annes_sous_responsable_actuel"
	Genre                        = "genre"
	StatutMarital                = "statut_marital"
	NiveauEducation              = "niveau_education"
	DomaineEtude                 = "domaine_etude"
	Departement                  = "departement"
	Poste                        = "poste"
	NiveauHierarchiquePoste      = "niveau_hierarchique_poste"
	FrequenceDeplacement         = "frequence_deplacement"
	RevenuMensuel                = "revenu_mensuel"
	AugmentationSalairePrec      = "augementation_salaire_precedente"
	SalaireParAnneeExp           = "salaire_par_annee_exp"
	HeureSupplementaires         = "heure_supplementaires"
	DistanceDomicileTravail      = "distance_domicile_travail"
	DistanceXDeplacement         = "distance_x_deplacement"
	ImpactTrajetSurSatisfaction  = "impact_trajet_sur_satisfaction"
	NoteEvaluationActuelle       = "note_evaluation_actuelle"
	NoteEvaluationPrecedente     = "note_evaluation_precedente"
	EvolutionNote                = "evolution_note"
	SatisfactionNatureTravail    = "satisfaction_employee_nature_travail"
	SatisfactionEnvironnement    = "satisfaction_employee_environnement"
	SatisfactionEquilibre        = "satisfaction_employee_equilibre_pro_perso"
	SatisfactionEquipe           = "satisfaction_employee_equipe"
	SatisfactionMoyenne          = "satisfaction_moyenne"
	ScoreSatisfactionGlobal      = "score_satisfaction_global"
	DeltaSatisfactionEquipe      = "delta_satisfaction_equipe"
	StagnationPoste              = "stagnation_poste"
	StagnationProfonde           = "stagnation_profonde"
	TauxVolatilite               = "taux_volatilite"
	RatioFideliteEntreprise      = "ratio_fidelite_entreprise"
	RatioPosteVsAnciennete       = "ratio_poste_vs_anciennete"
	AncienneteXSatisfaction      = "anciennete_x_satisfaction"
	NombreExperiencesPrecedentes = "nombre_experiences_precedentes"
	NbFormationsSuivies          = "nb_formations_suivies"
	FormationsParAnnee           = "formations_par_annee"
	NombreParticipationPEE       = "nombre_participation_pee"
)

var contract = []Feature{
	{Age, KindInt},
	{AgeDebutCarriere, KindInt},
	{AnneeExperienceTotale, KindInt},
	{AnneesDansLEntreprise, KindInt},
	{AnneesDansLePosteActuel, KindInt},
	{AnneesDepuisDernierePromo, KindInt},
	{AnneeDernierePromotion, KindInt},
	{AnnesSousResponsableActuel, KindInt},
	{Genre, KindEnum},
	{StatutMarital, KindText},
	{NiveauEducation, KindInt},
	{DomaineEtude, KindText},
	{Departement, KindText},
	{Poste, KindText},
	{NiveauHierarchiquePoste, KindInt},
	{FrequenceDeplacement, KindEnum},
	{RevenuMensuel, KindFloat},
	{AugmentationSalairePrec, KindFloat},
	{SalaireParAnneeExp, KindFloat},
	{HeureSupplementaires, KindEnum},
	{DistanceDomicileTravail, KindFloat},
	{DistanceXDeplacement, KindFloat},
	{ImpactTrajetSurSatisfaction, KindRange},
	{NoteEvaluationActuelle, KindRange},
	{NoteEvaluationPrecedente, KindRange},
	{EvolutionNote, KindFloat},
	{SatisfactionNatureTravail, KindRange},
	{SatisfactionEnvironnement, KindRange},
	{SatisfactionEquilibre, KindRange},
	{SatisfactionEquipe, KindRange},
	{SatisfactionMoyenne, KindRange},
	{ScoreSatisfactionGlobal, KindRange},
	{DeltaSatisfactionEquipe, KindRange},
	{StagnationPoste, KindEnum},
	{StagnationProfonde, KindEnum},
	{TauxVolatilite, KindRange},
	{RatioFideliteEntreprise, KindRange},
	{RatioPosteVsAnciennete, KindRange},
	{AncienneteXSatisfaction, KindFloat},
	{NombreExperiencesPrecedentes, KindInt},
	{NbFormationsSuivies, KindInt},
	{FormationsParAnnee, KindFloat},
	{NombreParticipationPEE, KindInt},
}

var kinds = func() map[string]Kind {
	m := make(map[string]Kind, len(contract))
	for _, f := range contract {
		m[f.Name] = f.Kind
	}
	return m
}()

// Contract returns the canonical ordered feature list. The returned slice is
// a copy.
func Contract() []Feature {
	out := make([]Feature, len(contract))
	copy(out, contract)
	return out
}

// Names returns the canonical feature names in contract order.
func Names() []string {
	out := make([]string, len(contract))
	for i, f := range contract {
		out[i] = f.Name
	}
	return out
}

// Len is the number of features in the contract.
func Len() int { return len(contract) }

// KindOf returns the kind of a canonical feature.
func KindOf(name string) (Kind, bool) {
	k, ok := kinds[name]
	return k, ok
}

// CheckComplete builds a Vector from input. Every canonical name must be a
// key of input (a nil value is allowed and means the feature is absent); the
// first missing name in contract order is reported as *MissingFeatureError.
// Numeric values must be JSON numbers, otherwise a *ValidationError names the
// first offending feature. A text feature holding a non-string is kept as
// malformed for its own rule to reject. Keys outside the contract are ignored.
func CheckComplete(input map[string]any) (*Vector, error) {
	for _, f := range contract {
		if _, ok := input[f.Name]; !ok {
			return nil, &MissingFeatureError{Feature: f.Name}
		}
	}

	v := &Vector{}
	for _, f := range contract {
		raw := input[f.Name]
		if raw == nil {
			continue
		}
		if f.Kind.Numeric() {
			n, ok := toFloat(raw)
			if !ok {
				return nil, typeError(f.Name, "nombre")
			}
			*numberFields[f.Name](v) = &n
			continue
		}
		s, ok := raw.(string)
		if !ok {
			if v.malformed == nil {
				v.malformed = make(map[string]struct{})
			}
			v.malformed[f.Name] = struct{}{}
			continue
		}
		*textFields[f.Name](v) = &s
	}
	return v, nil
}

func typeError(name, expected string) *ValidationError {
	return &ValidationError{
		Rule:    "feature_type",
		Group:   "contract",
		Feature: name,
		Message: name + " doit être de type " + expected,
	}
}

// toFloat accepts the numeric shapes produced by encoding/json (float64,
// json.Number) and by Go callers building maps by hand.
func toFloat(raw any) (float64, bool) {
	var f float64
	switch n := raw.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		v, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = v
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
