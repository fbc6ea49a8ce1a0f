package validation

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	f "github.com/okian/attrition/internal/domain/features"
)

// Text limits, in runes.
const (
	maxTextLen          = 100
	maxMaritalStatusLen = 50
)

// knownMaritalStatuses are accepted at any length; other values only need to
// be short.
var knownMaritalStatuses = map[string]struct{}{
	"Celibataire": {},
	"Marie":       {},
	"Marié":       {},
	"Divorce":     {},
	"Divorcé":     {},
	"Veuf":        {},
	"Separation":  {},
	"Séparé":      {},
}

var satisfactionScores = []string{
	f.SatisfactionNatureTravail,
	f.SatisfactionEnvironnement,
	f.SatisfactionEquilibre,
	f.SatisfactionEquipe,
	f.SatisfactionMoyenne,
	f.ScoreSatisfactionGlobal,
}

func ruleTable() []Rule {
	rules := []Rule{
		// age
		{Name: "age_range", Group: GroupAge, Feature: f.Age, Check: checkAge},
		{Name: "career_start_before_age", Group: GroupAge, Feature: f.AgeDebutCarriere, Check: func(v *f.Vector, _ Env) (string, bool) {
			start, ok1 := v.Number(f.AgeDebutCarriere)
			age, ok2 := v.Number(f.Age)
			if ok1 && ok2 && start >= age {
				return "age_debut_carriere doit être inférieur à age", false
			}
			return "", true
		}},

		// experience
		nonNegative("experience_non_negative", GroupExperience, f.AnneeExperienceTotale,
			"annee_experience_totale ne peut pas être négatif"),
		{Name: "age_experience_consistency", Group: GroupExperience, Feature: f.AnneeExperienceTotale, Check: func(v *f.Vector, _ Env) (string, bool) {
			start, ok1 := v.Number(f.AgeDebutCarriere)
			exp, ok2 := v.Number(f.AnneeExperienceTotale)
			age, ok3 := v.Number(f.Age)
			if ok1 && ok2 && ok3 && start+exp > age {
				return "incohérence âge / expérience", false
			}
			return "", true
		}},

		// tenure
		nonNegative("tenure_non_negative", GroupTenure, f.AnneesDansLEntreprise,
			"ancienneté négative interdite"),
		notAbove("role_within_tenure", GroupTenure, f.AnneesDansLePosteActuel, f.AnneesDansLEntreprise,
			"poste actuel > ancienneté entreprise"),
		notAbove("tenure_within_experience", GroupTenure, f.AnneesDansLEntreprise, f.AnneeExperienceTotale,
			"ancienneté en entreprise ne peut pas dépasser l'expérience totale"),

		// promotion
		nonNegative("years_since_promotion_non_negative", GroupPromotion, f.AnneesDepuisDernierePromo,
			"annees_depuis_la_derniere_promotion ne peut pas être négatif"),
		notAbove("years_since_promotion_within_tenure", GroupPromotion, f.AnneesDepuisDernierePromo, f.AnneesDansLEntreprise,
			"annees_depuis_la_derniere_promotion ne peut pas être supérieure à l'ancienneté"),
		{Name: "promotion_year_range", Group: GroupPromotion, Feature: f.AnneeDernierePromotion, Check: func(v *f.Vector, env Env) (string, bool) {
			year, ok := v.Number(f.AnneeDernierePromotion)
			if ok && (year < float64(env.MinPromotionYear) || year > float64(env.Year)) {
				return "annee_derniere_promotion invalide", false
			}
			return "", true
		}},
		{Name: "promotion_year_consistency", Group: GroupPromotion, Feature: f.AnneeDernierePromotion, Check: func(v *f.Vector, env Env) (string, bool) {
			year, ok1 := v.Number(f.AnneeDernierePromotion)
			since, ok2 := v.Number(f.AnneesDepuisDernierePromo)
			if ok1 && ok2 && float64(env.Year)-year != math.Trunc(since) {
				return "incohérence entre annee_derniere_promotion et annees_depuis_la_derniere_promotion", false
			}
			return "", true
		}},

		// responsibility
		nonNegative("manager_tenure_non_negative", GroupResponsibility, f.AnnesSousResponsableActuel,
			"annes_sous_responsable_actuel ne peut pas être négatif"),
		notAbove("manager_tenure_within_role", GroupResponsibility, f.AnnesSousResponsableActuel, f.AnneesDansLePosteActuel,
			"annes_sous_responsable_actuel ne peut pas dépasser les années dans le poste actuel"),

		// demographics
		oneOf("genre_enum", GroupDemographics, f.Genre, false, []float64{0, 1, 2},
			"genre doit être 0, 1 ou 2"),
		{Name: "marital_status_valid", Group: GroupDemographics, Feature: f.StatutMarital, Check: func(v *f.Vector, _ Env) (string, bool) {
			if v.Malformed(f.StatutMarital) {
				return "statut_marital doit être une chaîne non vide", false
			}
			s, ok := v.Text(f.StatutMarital)
			if !ok {
				return "", true
			}
			if s == "" {
				return "statut_marital doit être une chaîne non vide", false
			}
			if _, known := knownMaritalStatuses[s]; !known && utf8.RuneCountInString(s) > maxMaritalStatusLen {
				return "statut_marital invalide ou trop long", false
			}
			return "", true
		}},
		integerIn("education_level_range", GroupDemographics, f.NiveauEducation, 0, 10,
			"niveau_education doit être un entier raisonnable (0–10)"),
		{Name: "study_field_non_empty", Group: GroupDemographics, Feature: f.DomaineEtude, Check: func(v *f.Vector, _ Env) (string, bool) {
			if v.Malformed(f.DomaineEtude) {
				return "domaine_etude doit être une chaîne non vide", false
			}
			s, ok := v.Text(f.DomaineEtude)
			if ok && strings.TrimSpace(s) == "" {
				return "domaine_etude doit être une chaîne non vide", false
			}
			return "", true
		}},
		{Name: "study_field_length", Group: GroupDemographics, Feature: f.DomaineEtude, Check: func(v *f.Vector, _ Env) (string, bool) {
			s, ok := v.Text(f.DomaineEtude)
			if ok && utf8.RuneCountInString(s) > maxTextLen {
				return "domaine_etude trop long", false
			}
			return "", true
		}},

		// employment
		shortText("department_valid", GroupEmployment, f.Departement,
			"departement invalide ou trop long"),
		shortText("job_title_valid", GroupEmployment, f.Poste,
			"poste invalide ou trop long"),
		integerIn("hierarchy_level_range", GroupEmployment, f.NiveauHierarchiquePoste, 0, 20,
			"niveau_hierarchique_poste doit être un entier raisonnable (0–20)"),

		// compensation
		positive("monthly_income_positive", GroupCompensation, f.RevenuMensuel,
			"revenu_mensuel doit être positif"),
		nonNegative("raise_non_negative", GroupCompensation, f.AugmentationSalairePrec,
			"augmentation salaire négative interdite"),
		positive("salary_per_year_positive", GroupCompensation, f.SalaireParAnneeExp,
			"salaire_par_annee_exp doit être positif"),
		{Name: "salary_consistency", Group: GroupCompensation, Feature: f.SalaireParAnneeExp, Check: func(v *f.Vector, env Env) (string, bool) {
			salary, ok1 := v.Number(f.SalaireParAnneeExp)
			income, ok2 := v.Number(f.RevenuMensuel)
			if !ok1 || !ok2 {
				return "", true
			}
			annual := income * 12
			if math.Abs(salary-annual) > annual*env.SalaryTolerance {
				return "incohérence importante entre revenu_mensuel et salaire_par_annee_exp", false
			}
			return "", true
		}},

		// travel
		oneOf("travel_frequency_enum", GroupTravel, f.FrequenceDeplacement, true, []float64{0, 1, 2},
			"frequence_deplacement doit être 0, 1 ou 2"),
		nonNegative("commute_distance_non_negative", GroupTravel, f.DistanceDomicileTravail,
			"distance_domicile_travail invalide"),
		nonNegative("travel_distance_non_negative", GroupTravel, f.DistanceXDeplacement,
			"distance_x_deplacement invalide"),
		within("commute_impact_range", GroupTravel, f.ImpactTrajetSurSatisfaction, 0, 5,
			"impact_trajet_sur_satisfaction doit être entre 0 et 5"),

		// overtime
		oneOf("overtime_enum", GroupOvertime, f.HeureSupplementaires, true, []float64{0, 1},
			"heure_supplementaires doit être 0 ou 1"),

		// evaluations
		within("current_note_range", GroupEvaluations, f.NoteEvaluationActuelle, 1, 5,
			"note_evaluation_actuelle hors plage (1–5)"),
		within("previous_note_range", GroupEvaluations, f.NoteEvaluationPrecedente, 1, 5,
			"note_evaluation_precedente hors plage (1–5)"),
		{Name: "note_evolution_consistency", Group: GroupEvaluations, Feature: f.EvolutionNote, Check: checkEvolution},
	}

	// satisfaction
	for _, name := range satisfactionScores {
		rules = append(rules, within(name+"_range", GroupSatisfaction, name, 0, 5,
			name+" doit être entre 0 et 5"))
	}
	rules = append(rules,
		within("team_satisfaction_delta_range", GroupSatisfaction, f.DeltaSatisfactionEquipe, -5, 5,
			"delta_satisfaction_equipe hors plage (-5–5)"),

		// volatility
		within("volatility_rate_range", GroupVolatility, f.TauxVolatilite, 0, 1,
			"taux_volatilite doit être entre 0 et 1"),

		// ratios
		within("loyalty_ratio_range", GroupRatios, f.RatioFideliteEntreprise, 0, 1,
			"ratio_fidelite_entreprise doit être entre 0 et 1"),
		within("role_tenure_ratio_range", GroupRatios, f.RatioPosteVsAnciennete, 0, 1,
			"ratio_poste_vs_anciennete doit être entre 0 et 1"),
		nonNegative("tenure_satisfaction_non_negative", GroupRatios, f.AncienneteXSatisfaction,
			"anciennete_x_satisfaction ne peut pas être négatif"),

		// training
		count("previous_jobs_count", GroupTraining, f.NombreExperiencesPrecedentes,
			"nombre_experiences_precedentes doit être un entier >= 0"),
		count("trainings_count", GroupTraining, f.NbFormationsSuivies,
			"nb_formations_suivies doit être un entier >= 0"),
		nonNegative("trainings_per_year_non_negative", GroupTraining, f.FormationsParAnnee,
			"formations_par_annee doit être >= 0"),
		notAbove("trainings_per_year_within_total", GroupTraining, f.FormationsParAnnee, f.NbFormationsSuivies,
			"formations_par_annee ne peut pas dépasser nb_formations_suivies"),
		count("savings_plan_count", GroupTraining, f.NombreParticipationPEE,
			"nombre_participation_pee doit être un entier >= 0"),

		// stagnation
		oneOf("role_stagnation_enum", GroupStagnation, f.StagnationPoste, true, []float64{0, 1},
			"stagnation_poste doit être 0 ou 1"),
		oneOf("deep_stagnation_enum", GroupStagnation, f.StagnationProfonde, true, []float64{0, 1},
			"stagnation_profonde doit être 0 ou 1"),
	)
	return rules
}

// checkAge rejects a missing age as well as one outside the configured range.
func checkAge(v *f.Vector, env Env) (string, bool) {
	age, ok := v.Number(f.Age)
	if !ok || age < float64(env.AgeMin) || age > float64(env.AgeMax) {
		return fmt.Sprintf("age hors plage réaliste (%d–%d)", env.AgeMin, env.AgeMax), false
	}
	return "", true
}

// checkEvolution requires the exact note difference when both notes are
// known, and a plausible range otherwise.
func checkEvolution(v *f.Vector, _ Env) (string, bool) {
	evo, ok := v.Number(f.EvolutionNote)
	if !ok {
		return "", true
	}
	current, ok1 := v.Number(f.NoteEvaluationActuelle)
	previous, ok2 := v.Number(f.NoteEvaluationPrecedente)
	if ok1 && ok2 {
		if evo != current-previous {
			return "evolution_note incohérente avec note_actuelle et note_precedente", false
		}
		return "", true
	}
	if evo < -4 || evo > 4 {
		return "evolution_note hors plage raisonnable (-4–4)", false
	}
	return "", true
}

func within(name, group, feature string, lo, hi float64, msg string) Rule {
	return Rule{Name: name, Group: group, Feature: feature, Check: func(v *f.Vector, _ Env) (string, bool) {
		x, ok := v.Number(feature)
		if ok && (x < lo || x > hi) {
			return msg, false
		}
		return "", true
	}}
}

func nonNegative(name, group, feature, msg string) Rule {
	return Rule{Name: name, Group: group, Feature: feature, Check: func(v *f.Vector, _ Env) (string, bool) {
		x, ok := v.Number(feature)
		if ok && x < 0 {
			return msg, false
		}
		return "", true
	}}
}

func positive(name, group, feature, msg string) Rule {
	return Rule{Name: name, Group: group, Feature: feature, Check: func(v *f.Vector, _ Env) (string, bool) {
		x, ok := v.Number(feature)
		if ok && x <= 0 {
			return msg, false
		}
		return "", true
	}}
}

// notAbove rejects lower > upper when both are present.
func notAbove(name, group, lower, upper, msg string) Rule {
	return Rule{Name: name, Group: group, Feature: lower, Check: func(v *f.Vector, _ Env) (string, bool) {
		a, ok1 := v.Number(lower)
		b, ok2 := v.Number(upper)
		if ok1 && ok2 && a > b {
			return msg, false
		}
		return "", true
	}}
}

// oneOf checks membership in a small set. A mandatory feature must be present.
func oneOf(name, group, feature string, mandatory bool, allowed []float64, msg string) Rule {
	return Rule{Name: name, Group: group, Feature: feature, Check: func(v *f.Vector, _ Env) (string, bool) {
		x, ok := v.Number(feature)
		if !ok {
			if mandatory {
				return msg, false
			}
			return "", true
		}
		for _, a := range allowed {
			if x == a {
				return "", true
			}
		}
		return msg, false
	}}
}

func integerIn(name, group, feature string, lo, hi float64, msg string) Rule {
	return Rule{Name: name, Group: group, Feature: feature, Check: func(v *f.Vector, _ Env) (string, bool) {
		x, ok := v.Number(feature)
		if ok && (!integral(x) || x < lo || x > hi) {
			return msg, false
		}
		return "", true
	}}
}

func count(name, group, feature, msg string) Rule {
	return Rule{Name: name, Group: group, Feature: feature, Check: func(v *f.Vector, _ Env) (string, bool) {
		x, ok := v.Number(feature)
		if ok && (!integral(x) || x < 0) {
			return msg, false
		}
		return "", true
	}}
}

// shortText requires a string of at most maxTextLen runes. Empty is allowed.
func shortText(name, group, feature, msg string) Rule {
	return Rule{Name: name, Group: group, Feature: feature, Check: func(v *f.Vector, _ Env) (string, bool) {
		if v.Malformed(feature) {
			return msg, false
		}
		s, ok := v.Text(feature)
		if ok && utf8.RuneCountInString(s) > maxTextLen {
			return msg, false
		}
		return "", true
	}}
}

func integral(x float64) bool { return x == math.Trunc(x) }
