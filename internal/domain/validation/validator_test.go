package validation_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/attrition/internal/domain/features"
	"github.com/okian/attrition/internal/domain/features/featurestest"
	"github.com/okian/attrition/internal/domain/validation"
	. "github.com/smartystreets/goconvey/convey"
)

const year = 2026

func fixedClock() time.Time { return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC) }

func newValidator(opts ...validation.Option) *validation.Validator {
	return validation.New(append([]validation.Option{validation.WithClock(fixedClock)}, opts...)...)
}

func mustVector(input map[string]any) *features.Vector {
	v, err := features.CheckComplete(input)
	if err != nil {
		panic(err)
	}
	return v
}

// validate runs the whole pipeline on a mapping after applying edits.
func validate(v *validation.Validator, base map[string]any, edits map[string]any) validation.Outcome {
	for k, val := range edits {
		base[k] = val
	}
	return v.Validate(mustVector(base))
}

func TestValidatorAccepts(t *testing.T) {
	Convey("Given a validator with a fixed clock", t, func() {
		v := newValidator()

		Convey("When validating the reference fixtures", func() {
			for _, fixture := range []map[string]any{
				featurestest.Valid(year),
				featurestest.Staying(year),
				featurestest.Leaving(year),
			} {
				out := v.Validate(mustVector(fixture))
				So(out.Reason(), ShouldEqual, "")
				So(out.Accepted(), ShouldBeTrue)
				So(out.Err(), ShouldBeNil)
			}
		})

		Convey("When validating an accepted vector again", func() {
			vec := mustVector(featurestest.Valid(year))
			before := vec.Map()
			first := v.Validate(vec)
			second := v.Validate(first.Vector())

			Convey("Then it is accepted unchanged", func() {
				So(second.Accepted(), ShouldBeTrue)
				So(second.Vector(), ShouldEqual, vec)
				So(second.Vector().Map(), ShouldResemble, before)
			})
		})

		Convey("When optional features are null", func() {
			out := validate(v, featurestest.Valid(year), map[string]any{
				features.AgeDebutCarriere:       nil,
				features.RevenuMensuel:          nil,
				features.StatutMarital:          nil,
				features.NoteEvaluationActuelle: nil,
				features.EvolutionNote:          nil,
			})
			So(out.Accepted(), ShouldBeTrue)
		})

		Convey("When department and job title are empty strings", func() {
			out := validate(v, featurestest.Valid(year), map[string]any{
				features.Departement: "",
				features.Poste:       "",
			})
			So(out.Reason(), ShouldEqual, "")
			So(out.Accepted(), ShouldBeTrue)
		})

		Convey("When the vector is nil", func() {
			out := v.Validate(nil)
			So(out.Accepted(), ShouldBeFalse)
			So(out.Vector(), ShouldBeNil)
		})
	})
}

func TestValidatorRejections(t *testing.T) {
	Convey("Given a validator and a valid employee", t, func() {
		v := newValidator()

		cases := []struct {
			name   string
			edits  map[string]any
			rule   string
			substr string
		}{
			{"age too young", map[string]any{"age": 15}, "age_range", "age hors plage"},
			{"age too old", map[string]any{"age": 71}, "age_range", "age hors plage"},
			{"age null", map[string]any{"age": nil}, "age_range", "age hors plage"},
			{"career start after age", map[string]any{"age_debut_carriere": 40}, "career_start_before_age", "age_debut_carriere"},
			{"career start equal to age", map[string]any{"age_debut_carriere": 35}, "career_start_before_age", "age_debut_carriere"},
			{"negative experience", map[string]any{"annee_experience_totale": -1}, "experience_non_negative", "experience"},
			{"age experience", map[string]any{"age_debut_carriere": 20, "annee_experience_totale": 20, "age": 35}, "age_experience_consistency", "incohérence âge"},
			{"negative tenure", map[string]any{"annees_dans_l_entreprise": -1}, "tenure_non_negative", "ancienneté négative"},
			{"role above tenure", map[string]any{"annees_dans_le_poste_actuel": 10, "annees_dans_l_entreprise": 5}, "role_within_tenure", "poste actuel"},
			{"tenure above experience", map[string]any{"annees_dans_l_entreprise": 15, "annee_experience_totale": 10}, "tenure_within_experience", "ancienneté en entreprise"},
			{"negative years since promotion", map[string]any{"annees_depuis_la_derniere_promotion": -1}, "years_since_promotion_non_negative", "ne peut pas être négatif"},
			{"promotion older than tenure", map[string]any{"annees_depuis_la_derniere_promotion": 6, "annee_derniere_promotion": year - 6}, "years_since_promotion_within_tenure", "supérieure à l'ancienneté"},
			{"promotion in the future", map[string]any{"annee_derniere_promotion": year + 1}, "promotion_year_range", "annee_derniere_promotion invalide"},
			{"promotion too old", map[string]any{"annee_derniere_promotion": 1899}, "promotion_year_range", "annee_derniere_promotion invalide"},
			{"promotion year mismatch", map[string]any{"annee_derniere_promotion": year - 3}, "promotion_year_consistency", "incohérence entre annee_derniere_promotion"},
			{"negative manager years", map[string]any{"annes_sous_responsable_actuel": -1}, "manager_tenure_non_negative", "annes_sous_responsable_actuel"},
			{"manager above role", map[string]any{"annes_sous_responsable_actuel": 4}, "manager_tenure_within_role", "années dans le poste actuel"},
			{"bad genre", map[string]any{"genre": 3}, "genre_enum", "genre doit être 0, 1 ou 2"},
			{"empty marital status", map[string]any{"statut_marital": ""}, "marital_status_valid", "chaîne non vide"},
			{"long marital status", map[string]any{"statut_marital": strings.Repeat("x", 51)}, "marital_status_valid", "statut_marital invalide"},
			{"education above range", map[string]any{"niveau_education": 11}, "education_level_range", "niveau_education"},
			{"education not integral", map[string]any{"niveau_education": 3.5}, "education_level_range", "niveau_education"},
			{"blank study field", map[string]any{"domaine_etude": "   "}, "study_field_non_empty", "domaine_etude doit être une chaîne non vide"},
			{"long study field", map[string]any{"domaine_etude": strings.Repeat("é", 101)}, "study_field_length", "domaine_etude trop long"},
			{"numeric department", map[string]any{"departement": 123}, "department_valid", "departement invalide ou trop long"},
			{"numeric job title", map[string]any{"poste": 7}, "job_title_valid", "poste invalide ou trop long"},
			{"numeric marital status", map[string]any{"statut_marital": 5}, "marital_status_valid", "statut_marital doit être une chaîne non vide"},
			{"list study field", map[string]any{"domaine_etude": []any{"Informatique"}}, "study_field_non_empty", "domaine_etude doit être une chaîne non vide"},
			{"long job title", map[string]any{"poste": strings.Repeat("p", 101)}, "job_title_valid", "poste invalide"},
			{"hierarchy above range", map[string]any{"niveau_hierarchique_poste": 21}, "hierarchy_level_range", "niveau_hierarchique_poste"},
			{"negative income", map[string]any{"revenu_mensuel": -100}, "monthly_income_positive", "revenu_mensuel doit être positif"},
			{"negative raise", map[string]any{"augementation_salaire_precedente": -1}, "raise_non_negative", "augmentation"},
			{"zero salary", map[string]any{"salaire_par_annee_exp": 0}, "salary_per_year_positive", "salaire_par_annee_exp doit être positif"},
			{"salary incoherent", map[string]any{"revenu_mensuel": 2000, "salaire_par_annee_exp": 100000}, "salary_consistency", "incohérence"},
			{"travel frequency", map[string]any{"frequence_deplacement": 5}, "travel_frequency_enum", "frequence_deplacement"},
			{"travel frequency null", map[string]any{"frequence_deplacement": nil}, "travel_frequency_enum", "frequence_deplacement"},
			{"negative commute", map[string]any{"distance_domicile_travail": -1}, "commute_distance_non_negative", "distance_domicile_travail"},
			{"negative travel distance", map[string]any{"distance_x_deplacement": -1}, "travel_distance_non_negative", "distance_x_deplacement"},
			{"commute impact", map[string]any{"impact_trajet_sur_satisfaction": 6}, "commute_impact_range", "impact_trajet"},
			{"overtime", map[string]any{"heure_supplementaires": 2}, "overtime_enum", "heure_supplementaires"},
			{"overtime null", map[string]any{"heure_supplementaires": nil}, "overtime_enum", "heure_supplementaires"},
			{"current note", map[string]any{"note_evaluation_actuelle": 6}, "current_note_range", "note_evaluation_actuelle"},
			{"previous note", map[string]any{"note_evaluation_precedente": 0}, "previous_note_range", "note_evaluation_precedente"},
			{"evolution mismatch", map[string]any{"evolution_note": 2}, "note_evolution_consistency", "evolution_note incohérente"},
			{"evolution out of range", map[string]any{"note_evaluation_precedente": nil, "evolution_note": 5}, "note_evolution_consistency", "evolution_note hors plage"},
			{"satisfaction", map[string]any{"satisfaction_employee_equipe": 6}, "satisfaction_employee_equipe_range", "satisfaction_employee_equipe doit être entre 0 et 5"},
			{"global satisfaction", map[string]any{"score_satisfaction_global": -1}, "score_satisfaction_global_range", "score_satisfaction_global"},
			{"team delta", map[string]any{"delta_satisfaction_equipe": -6}, "team_satisfaction_delta_range", "delta_satisfaction_equipe"},
			{"volatility", map[string]any{"taux_volatilite": 1.5}, "volatility_rate_range", "taux_volatilite"},
			{"loyalty ratio", map[string]any{"ratio_fidelite_entreprise": 1.1}, "loyalty_ratio_range", "ratio_fidelite_entreprise"},
			{"role ratio", map[string]any{"ratio_poste_vs_anciennete": -0.1}, "role_tenure_ratio_range", "ratio_poste_vs_anciennete"},
			{"tenure satisfaction", map[string]any{"anciennete_x_satisfaction": -1}, "tenure_satisfaction_non_negative", "anciennete_x_satisfaction"},
			{"previous jobs", map[string]any{"nombre_experiences_precedentes": 1.5}, "previous_jobs_count", "nombre_experiences_precedentes"},
			{"trainings", map[string]any{"nb_formations_suivies": -1}, "trainings_count", "nb_formations_suivies"},
			{"trainings per year negative", map[string]any{"formations_par_annee": -1}, "trainings_per_year_non_negative", "formations_par_annee doit être >= 0"},
			{"trainings per year above total", map[string]any{"formations_par_annee": 5}, "trainings_per_year_within_total", "ne peut pas dépasser nb_formations_suivies"},
			{"savings plan", map[string]any{"nombre_participation_pee": -2}, "savings_plan_count", "nombre_participation_pee"},
			{"role stagnation", map[string]any{"stagnation_poste": 2}, "role_stagnation_enum", "stagnation_poste doit être 0 ou 1"},
			{"deep stagnation null", map[string]any{"stagnation_profonde": nil}, "deep_stagnation_enum", "stagnation_profonde doit être 0 ou 1"},
		}

		for _, tc := range cases {
			Convey("When "+tc.name, func() {
				out := validate(v, featurestest.Valid(year), tc.edits)

				Convey("Then the vector is rejected by "+tc.rule, func() {
					So(out.Accepted(), ShouldBeFalse)
					So(out.Vector(), ShouldBeNil)
					So(out.Rule(), ShouldEqual, tc.rule)
					So(out.Reason(), ShouldContainSubstring, tc.substr)

					var verr *validation.ValidationError
					So(errors.As(out.Err(), &verr), ShouldBeTrue)
					So(verr.Message, ShouldEqual, out.Reason())
					So(errors.Is(out.Err(), features.ErrInvalidFeature), ShouldBeTrue)
				})
			})
		}
	})
}

func TestValidatorProperties(t *testing.T) {
	Convey("Given a validator", t, func() {
		v := newValidator()

		Convey("Every age outside 16..70 is rejected with the configured bounds", func() {
			for _, age := range []any{-5, 0, 10, 15, 15.9, 70.1, 71, 120} {
				out := validate(v, featurestest.Staying(year), map[string]any{"age": age})
				So(out.Accepted(), ShouldBeFalse)
				So(out.Reason(), ShouldContainSubstring, "age")
				So(out.Reason(), ShouldContainSubstring, "16")
				So(out.Reason(), ShouldContainSubstring, "70")
			}
		})

		Convey("Every career start at or after age is rejected", func() {
			for _, start := range []int{40, 41, 60} {
				out := validate(v, featurestest.Staying(year), map[string]any{"age_debut_carriere": start})
				So(out.Accepted(), ShouldBeFalse)
				So(out.Rule(), ShouldEqual, "career_start_before_age")
			}
		})

		Convey("Tenure above total experience is rejected", func() {
			out := validate(v, featurestest.Staying(year), map[string]any{
				"annee_experience_totale":  9,
				"annees_dans_l_entreprise": 10,
			})
			So(out.Accepted(), ShouldBeFalse)
			So(out.Rule(), ShouldEqual, "tenure_within_experience")
		})

		Convey("With one note absent the evolution only needs to be in -4..4", func() {
			for _, edits := range []map[string]any{
				{"note_evaluation_actuelle": nil, "evolution_note": -4},
				{"note_evaluation_precedente": nil, "evolution_note": 4},
				{"note_evaluation_precedente": nil, "evolution_note": 2.5},
			} {
				out := validate(v, featurestest.Valid(year), edits)
				So(out.Accepted(), ShouldBeTrue)
			}
		})

		Convey("The salary band is exclusive of its edges", func() {
			// 2000 * 12 = 24000, band [12000, 36000]
			for salary, accepted := range map[float64]bool{
				12000: true, 36000: true, 11999: false, 36001: false, 100000: false,
			} {
				out := validate(v, featurestest.Valid(year), map[string]any{
					"revenu_mensuel":        2000,
					"salaire_par_annee_exp": salary,
				})
				So(out.Accepted(), ShouldEqual, accepted)
			}
		})

		Convey("Known marital statuses and short unknown ones are accepted", func() {
			for _, s := range []string{"Marié", "Séparé", "Pacsé", strings.Repeat("y", 50)} {
				out := validate(v, featurestest.Valid(year), map[string]any{"statut_marital": s})
				So(out.Accepted(), ShouldBeTrue)
			}
		})

		Convey("Integral floats count as integers", func() {
			out := validate(v, featurestest.Valid(year), map[string]any{
				"niveau_education":               3.0,
				"nombre_experiences_precedentes": 2.0,
			})
			So(out.Accepted(), ShouldBeTrue)
		})

		Convey("The first failing group wins", func() {
			out := validate(v, featurestest.Valid(year), map[string]any{
				"age":                   10,
				"heure_supplementaires": 7,
			})
			So(out.Rule(), ShouldEqual, "age_range")
		})
	})
}

func TestValidatorOptions(t *testing.T) {
	Convey("Given a validator with custom bounds", t, func() {
		v := newValidator(
			validation.WithAgeRange(18, 65),
			validation.WithSalaryTolerance(0.1),
			validation.WithMinPromotionYear(2000),
		)

		Convey("Then the age message carries the configured bounds", func() {
			out := validate(v, featurestest.Valid(year), map[string]any{"age": 17})
			So(out.Reason(), ShouldEqual, "age hors plage réaliste (18–65)")
		})

		Convey("Then the salary band is narrower", func() {
			out := validate(v, featurestest.Valid(year), map[string]any{"salaire_par_annee_exp": 40000})
			So(out.Rule(), ShouldEqual, "salary_consistency")
		})

		Convey("Then the env reflects the options", func() {
			env := v.Env()
			So(env.Year, ShouldEqual, year)
			So(env.AgeMin, ShouldEqual, 18)
			So(env.MinPromotionYear, ShouldEqual, 2000)
		})

		Convey("Then an inverted age range is ignored", func() {
			v := newValidator(validation.WithAgeRange(70, 16))
			So(v.Env().AgeMin, ShouldEqual, validation.DefaultAgeMin)
		})
	})

	Convey("Given the clock moves to the next year", t, func() {
		v := validation.New(validation.WithClock(func() time.Time {
			return time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
		}))

		Convey("Then a promotion consistent last year no longer is", func() {
			out := v.Validate(mustVector(featurestest.Valid(year)))
			So(out.Rule(), ShouldEqual, "promotion_year_consistency")
		})
	})
}

func TestRuleTable(t *testing.T) {
	Convey("Given the rule table", t, func() {
		rules := validation.New().Rules()
		groups := validation.Groups()

		Convey("Then groups appear in evaluation order", func() {
			pos := map[string]int{}
			for i, g := range groups {
				pos[g] = i
			}
			last := 0
			for _, r := range rules {
				p, ok := pos[r.Group]
				So(ok, ShouldBeTrue)
				So(p, ShouldBeGreaterThanOrEqualTo, last)
				last = p
			}
		})

		Convey("Then rule names are unique and features are canonical", func() {
			seen := map[string]bool{}
			for _, r := range rules {
				So(seen[r.Name], ShouldBeFalse)
				seen[r.Name] = true
				_, ok := features.KindOf(r.Feature)
				So(ok, ShouldBeTrue)
			}
		})
	})
}

func TestValidateMap(t *testing.T) {
	Convey("Given a validator", t, func() {
		v := newValidator()

		Convey("A complete valid mapping yields the vector", func() {
			vec, err := v.ValidateMap(featurestest.Staying(year))
			So(err, ShouldBeNil)
			So(*vec.Age, ShouldEqual, 40)
		})

		Convey("A missing field yields MissingFeatureError", func() {
			input := featurestest.Staying(year)
			delete(input, features.TauxVolatilite)
			_, err := v.ValidateMap(input)
			var missing *features.MissingFeatureError
			So(errors.As(err, &missing), ShouldBeTrue)
			So(missing.Feature, ShouldEqual, features.TauxVolatilite)
		})

		Convey("A rule violation yields ValidationError", func() {
			input := featurestest.Staying(year)
			input["age"] = 10
			_, err := v.ValidateMap(input)
			var verr *validation.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Group, ShouldEqual, validation.GroupAge)
		})

		Convey("A mistyped text field does not mask an earlier rule", func() {
			input := featurestest.Staying(year)
			input["age"] = 10
			input[features.Departement] = 123
			_, err := v.ValidateMap(input)
			var verr *validation.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Rule, ShouldEqual, "age_range")
			So(verr.Message, ShouldContainSubstring, "age hors plage")
		})

		Convey("A mistyped text field is rejected by its own rule", func() {
			input := featurestest.Staying(year)
			input[features.Departement] = 123
			_, err := v.ValidateMap(input)
			var verr *validation.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Rule, ShouldEqual, "department_valid")
			So(verr.Message, ShouldEqual, "departement invalide ou trop long")
		})
	})
}

func TestValidatorConcurrent(t *testing.T) {
	v := newValidator()
	vec := mustVector(featurestest.Valid(year))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if out := v.Validate(vec); !out.Accepted() {
					t.Errorf("unexpected rejection: %s", out.Reason())
					return
				}
			}
		}()
	}
	wg.Wait()
}
