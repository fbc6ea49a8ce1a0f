// Package featurestest provides feature mappings for tests: a generic valid
// employee, a loyal one the model scores as staying, and a disengaged one it
// scores as leaving. Each call returns a fresh map so tests may mutate it.
package featurestest

// Valid returns a consistent feature mapping for an employee whose last
// promotion happened two years before year.
func Valid(year int) map[string]any {
	return map[string]any{
		"age":                                 35,
		"age_debut_carriere":                  23,
		"annee_experience_totale":             12,
		"annees_dans_l_entreprise":            5,
		"annees_dans_le_poste_actuel":         3,
		"annees_depuis_la_derniere_promotion": 2,
		"annee_derniere_promotion":            year - 2,
		"annes_sous_responsable_actuel":       2,

		"genre":            1,
		"statut_marital":   "Celibataire",
		"niveau_education": 3,
		"domaine_etude":    "Informatique",

		"departement":               "IT",
		"poste":                     "Developpeur",
		"niveau_hierarchique_poste": 2,
		"frequence_deplacement":     1,

		"revenu_mensuel":                   3000,
		"augementation_salaire_precedente": 5,
		"salaire_par_annee_exp":            36000,

		"heure_supplementaires":          1,
		"distance_domicile_travail":      15,
		"distance_x_deplacement":         30,
		"impact_trajet_sur_satisfaction": 2,

		"note_evaluation_actuelle":   4,
		"note_evaluation_precedente": 3,
		"evolution_note":             1,

		"satisfaction_employee_nature_travail":      3,
		"satisfaction_employee_environnement":       3,
		"satisfaction_employee_equilibre_pro_perso": 3,
		"satisfaction_employee_equipe":              3,
		"satisfaction_moyenne":                      3,
		"score_satisfaction_global":                 3,
		"delta_satisfaction_equipe":                 0,

		"stagnation_poste":    0,
		"stagnation_profonde": 0,

		"taux_volatilite":           0.2,
		"ratio_fidelite_entreprise": 0.6,
		"ratio_poste_vs_anciennete": 0.5,
		"anciennete_x_satisfaction": 10,

		"nombre_experiences_precedentes": 2,
		"nb_formations_suivies":          4,
		"formations_par_annee":           1,
		"nombre_participation_pee":       1,
	}
}

// Staying returns a long-tenured, satisfied employee without overtime.
func Staying(year int) map[string]any {
	return map[string]any{
		"age":                                 40,
		"age_debut_carriere":                  22,
		"annee_experience_totale":             18,
		"annees_dans_l_entreprise":            10,
		"annees_dans_le_poste_actuel":         6,
		"annees_depuis_la_derniere_promotion": 1,
		"annee_derniere_promotion":            year - 1,
		"annes_sous_responsable_actuel":       5,

		"genre":            1,
		"statut_marital":   "Marié",
		"niveau_education": 4,
		"domaine_etude":    "Informatique",

		"departement":               "IT",
		"poste":                     "Lead Developer",
		"niveau_hierarchique_poste": 4,
		"frequence_deplacement":     0,

		"revenu_mensuel":                   5000,
		"augementation_salaire_precedente": 10,
		"salaire_par_annee_exp":            60000,

		"heure_supplementaires":          0,
		"distance_domicile_travail":      5,
		"distance_x_deplacement":         5,
		"impact_trajet_sur_satisfaction": 0,

		"note_evaluation_actuelle":   5,
		"note_evaluation_precedente": 4,
		"evolution_note":             1,

		"satisfaction_employee_nature_travail":      5,
		"satisfaction_employee_environnement":       5,
		"satisfaction_employee_equilibre_pro_perso": 5,
		"satisfaction_employee_equipe":              5,
		"satisfaction_moyenne":                      5,
		"score_satisfaction_global":                 5,
		"delta_satisfaction_equipe":                 0,

		"stagnation_poste":    0,
		"stagnation_profonde": 0,

		"taux_volatilite":           0.05,
		"ratio_fidelite_entreprise": 0.9,
		"ratio_poste_vs_anciennete": 0.6,
		"anciennete_x_satisfaction": 50,

		"nombre_experiences_precedentes": 1,
		"nb_formations_suivies":          10,
		"formations_par_annee":           2,
		"nombre_participation_pee":       5,
	}
}

// Leaving returns a young, dissatisfied, stagnating employee doing overtime.
func Leaving(year int) map[string]any {
	return map[string]any{
		"age":                                 28,
		"age_debut_carriere":                  22,
		"annee_experience_totale":             6,
		"annees_dans_l_entreprise":            1,
		"annees_dans_le_poste_actuel":         1,
		"annees_depuis_la_derniere_promotion": 1,
		"annee_derniere_promotion":            year - 1,
		"annes_sous_responsable_actuel":       0,

		"genre":            0,
		"statut_marital":   "Celibataire",
		"niveau_education": 2,
		"domaine_etude":    "Autre",

		"departement":               "Sales",
		"poste":                     "Commercial",
		"niveau_hierarchique_poste": 0,
		"frequence_deplacement":     2,

		"revenu_mensuel":                   2200,
		"augementation_salaire_precedente": 0,
		"salaire_par_annee_exp":            26000,

		"heure_supplementaires":          1,
		"distance_domicile_travail":      50,
		"distance_x_deplacement":         100,
		"impact_trajet_sur_satisfaction": 5,

		"note_evaluation_actuelle":   2,
		"note_evaluation_precedente": 3,
		"evolution_note":             -1,

		"satisfaction_employee_nature_travail":      1,
		"satisfaction_employee_environnement":       1,
		"satisfaction_employee_equilibre_pro_perso": 1,
		"satisfaction_employee_equipe":              1,
		"satisfaction_moyenne":                      1,
		"score_satisfaction_global":                 1,
		"delta_satisfaction_equipe":                 -2,

		"stagnation_poste":    1,
		"stagnation_profonde": 1,

		"taux_volatilite":           0.9,
		"ratio_fidelite_entreprise": 0.1,
		"ratio_poste_vs_anciennete": 0.9,
		"anciennete_x_satisfaction": 1,

		"nombre_experiences_precedentes": 4,
		"nb_formations_suivies":          0,
		"formations_par_annee":           0,
		"nombre_participation_pee":       0,
	}
}
