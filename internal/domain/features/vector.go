package features

// Vector is one employee's feature vector. Every member is optional: nil
// means the request carried an explicit null. A Vector is treated as
// immutable once CheckComplete returns it.
type Vector struct {
	Age                          *float64 `json:"age"`
	AgeDebutCarriere             *float64 `json:"age_debut_carriere"`
	AnneeExperienceTotale        *float64 `json:"annee_experience_totale"`
	AnneesDansLEntreprise        *float64 `json:"annees_dans_l_entreprise"`
	AnneesDansLePosteActuel      *float64 `json:"annees_dans_le_poste_actuel"`
	AnneesDepuisDernierePromo    *float64 `json:"annees_depuis_la_derniere_promotion"`
	AnneeDernierePromotion       *float64 `json:"annee_derniere_promotion"`
	AnnesSousResponsableActuel   *float64 `json:"annes_sous_responsable_actuel"`
	Genre                        *float64 `json:"genre"`
	StatutMarital                *string  `json:"statut_marital"`
	NiveauEducation              *float64 `json:"niveau_education"`
	DomaineEtude                 *string  `json:"domaine_etude"`
	Departement                  *string  `json:"departement"`
	Poste                        *string  `json:"poste"`
	NiveauHierarchiquePoste      *float64 `json:"niveau_hierarchique_poste"`
	FrequenceDeplacement         *float64 `json:"frequence_deplacement"`
	RevenuMensuel                *float64 `json:"revenu_mensuel"`
	AugmentationSalairePrec      *float64 `json:"augementation_salaire_precedente"`
	SalaireParAnneeExp           *float64 `json:"salaire_par_annee_exp"`
	HeureSupplementaires         *float64 `json:"heure_supplementaires"`
	DistanceDomicileTravail      *float64 `json:"distance_domicile_travail"`
	DistanceXDeplacement         *float64 `json:"distance_x_deplacement"`
	ImpactTrajetSurSatisfaction  *float64 `json:"impact_trajet_sur_satisfaction"`
	NoteEvaluationActuelle       *float64 `json:"note_evaluation_actuelle"`
	NoteEvaluationPrecedente     *float64 `json:"note_evaluation_precedente"`
	EvolutionNote                *float64 `json:"evolution_note"`
	SatisfactionNatureTravail    *float64 `json:"satisfaction_employee_nature_travail"`
	SatisfactionEnvironnement    *float64 `json:"satisfaction_employee_environnement"`
	SatisfactionEquilibre        *float64 `json:"satisfaction_employee_equilibre_pro_perso"`
	SatisfactionEquipe           *float64 `json:"satisfaction_employee_equipe"`
	SatisfactionMoyenne          *float64 `json:"satisfaction_moyenne"`
	ScoreSatisfactionGlobal      *float64 `json:"score_satisfaction_global"`
	DeltaSatisfactionEquipe      *float64 `json:"delta_satisfaction_equipe"`
	StagnationPoste              *float64 `json:"stagnation_poste"`
	StagnationProfonde           *float64 `json:"stagnation_profonde"`
	TauxVolatilite               *float64 `json:"taux_volatilite"`
	RatioFideliteEntreprise      *float64 `json:"ratio_fidelite_entreprise"`
	RatioPosteVsAnciennete       *float64 `json:"ratio_poste_vs_anciennete"`
	AncienneteXSatisfaction      *float64 `json:"anciennete_x_satisfaction"`
	NombreExperiencesPrecedentes *float64 `json:"nombre_experiences_precedentes"`
	NbFormationsSuivies          *float64 `json:"nb_formations_suivies"`
	FormationsParAnnee           *float64 `json:"formations_par_annee"`
	NombreParticipationPEE       *float64 `json:"nombre_participation_pee"`

	malformed map[string]struct{}
}

// numberFields maps every numeric feature name to its member.
var numberFields = map[string]func(*Vector) **float64{
	Age:                          func(v *Vector) **float64 { return &v.Age },
	AgeDebutCarriere:             func(v *Vector) **float64 { return &v.AgeDebutCarriere },
	AnneeExperienceTotale:        func(v *Vector) **float64 { return &v.AnneeExperienceTotale },
	AnneesDansLEntreprise:        func(v *Vector) **float64 { return &v.AnneesDansLEntreprise },
	AnneesDansLePosteActuel:      func(v *Vector) **float64 { return &v.AnneesDansLePosteActuel },
	AnneesDepuisDernierePromo:    func(v *Vector) **float64 { return &v.AnneesDepuisDernierePromo },
	AnneeDernierePromotion:       func(v *Vector) **float64 { return &v.AnneeDernierePromotion },
	AnnesSousResponsableActuel:   func(v *Vector) **float64 { return &v.AnnesSousResponsableActuel },
	Genre:                        func(v *Vector) **float64 { return &v.Genre },
	NiveauEducation:              func(v *Vector) **float64 { return &v.NiveauEducation },
	NiveauHierarchiquePoste:      func(v *Vector) **float64 { return &v.NiveauHierarchiquePoste },
	FrequenceDeplacement:         func(v *Vector) **float64 { return &v.FrequenceDeplacement },
	RevenuMensuel:                func(v *Vector) **float64 { return &v.RevenuMensuel },
	AugmentationSalairePrec:      func(v *Vector) **float64 { return &v.AugmentationSalairePrec },
	SalaireParAnneeExp:           func(v *Vector) **float64 { return &v.SalaireParAnneeExp },
	HeureSupplementaires:         func(v *Vector) **float64 { return &v.HeureSupplementaires },
	DistanceDomicileTravail:      func(v *Vector) **float64 { return &v.DistanceDomicileTravail },
	DistanceXDeplacement:         func(v *Vector) **float64 { return &v.DistanceXDeplacement },
	ImpactTrajetSurSatisfaction:  func(v *Vector) **float64 { return &v.ImpactTrajetSurSatisfaction },
	NoteEvaluationActuelle:       func(v *Vector) **float64 { return &v.NoteEvaluationActuelle },
	NoteEvaluationPrecedente:     func(v *Vector) **float64 { return &v.NoteEvaluationPrecedente },
	EvolutionNote:                func(v *Vector) **float64 { return &v.EvolutionNote },
	SatisfactionNatureTravail:    func(v *Vector) **float64 { return &v.SatisfactionNatureTravail },
	SatisfactionEnvironnement:    func(v *Vector) **float64 { return &v.SatisfactionEnvironnement },
	SatisfactionEquilibre:        func(v *Vector) **float64 { return &v.SatisfactionEquilibre },
	SatisfactionEquipe:           func(v *Vector) **float64 { return &v.SatisfactionEquipe },
	SatisfactionMoyenne:          func(v *Vector) **float64 { return &v.SatisfactionMoyenne },
	ScoreSatisfactionGlobal:      func(v *Vector) **float64 { return &v.ScoreSatisfactionGlobal },
	DeltaSatisfactionEquipe:      func(v *Vector) **float64 { return &v.DeltaSatisfactionEquipe },
	StagnationPoste:              func(v *Vector) **float64 { return &v.StagnationPoste },
	StagnationProfonde:           func(v *Vector) **float64 { return &v.StagnationProfonde },
	TauxVolatilite:               func(v *Vector) **float64 { return &v.TauxVolatilite },
	RatioFideliteEntreprise:      func(v *Vector) **float64 { return &v.RatioFideliteEntreprise },
	RatioPosteVsAnciennete:       func(v *Vector) **float64 { return &v.RatioPosteVsAnciennete },
	AncienneteXSatisfaction:      func(v *Vector) **float64 { return &v.AncienneteXSatisfaction },
	NombreExperiencesPrecedentes: func(v *Vector) **float64 { return &v.NombreExperiencesPrecedentes },
	NbFormationsSuivies:          func(v *Vector) **float64 { return &v.NbFormationsSuivies },
	FormationsParAnnee:           func(v *Vector) **float64 { return &v.FormationsParAnnee },
	NombreParticipationPEE:       func(v *Vector) **float64 { return &v.NombreParticipationPEE },
}

// textFields maps every text feature name to its member.
var textFields = map[string]func(*Vector) **string{
	StatutMarital: func(v *Vector) **string { return &v.StatutMarital },
	DomaineEtude:  func(v *Vector) **string { return &v.DomaineEtude },
	Departement:   func(v *Vector) **string { return &v.Departement },
	Poste:         func(v *Vector) **string { return &v.Poste },
}

// Number returns the value of a numeric feature. ok is false when the name
// is not a numeric feature or the value is absent.
func (v *Vector) Number(name string) (float64, bool) {
	field, found := numberFields[name]
	if !found {
		return 0, false
	}
	if p := *field(v); p != nil {
		return *p, true
	}
	return 0, false
}

// Text returns the value of a text feature. ok is false when the name is not
// a text feature, the value is absent or it was not a string.
func (v *Vector) Text(name string) (string, bool) {
	field, found := textFields[name]
	if !found {
		return "", false
	}
	if p := *field(v); p != nil {
		return *p, true
	}
	return "", false
}

// Malformed reports whether a text feature was sent with a non-string value.
// Such values are left to the feature's own rule to reject.
func (v *Vector) Malformed(name string) bool {
	_, bad := v.malformed[name]
	return bad
}

// Map returns the vector keyed by canonical name; absent members map to nil.
// The result round-trips through CheckComplete.
func (v *Vector) Map() map[string]any {
	out := make(map[string]any, len(contract))
	for _, f := range contract {
		if f.Kind.Numeric() {
			if p := *numberFields[f.Name](v); p != nil {
				out[f.Name] = *p
			} else {
				out[f.Name] = nil
			}
			continue
		}
		if p := *textFields[f.Name](v); p != nil {
			out[f.Name] = *p
		} else {
			out[f.Name] = nil
		}
	}
	return out
}
