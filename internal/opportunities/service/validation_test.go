package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/opportunities/domain"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	e, ok := apperr.As(err)
	require.True(t, ok)
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Name)
	}
	return names
}

func ptr[T any](v T) *T { return &v }

func validStage() StageInput {
	return StageInput{
		Titre:        "Stage réseaux",
		NomStructure: "Camtel",
		Description:  "Supervision du backbone national.",
		TypeStage:    domain.StageAcademique,
	}
}

func TestStageInputValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		in := validStage()
		assert.NoError(t, in.validate())
	})

	t.Run("missing core fields", func(t *testing.T) {
		in := StageInput{Titre: "  ", TypeStage: domain.StageOuvrier}
		names := fieldNames(t, in.validate())
		assert.ElementsMatch(t, []string{"titre", "nom_structure", "description"}, names)
	})

	t.Run("unknown type", func(t *testing.T) {
		in := validStage()
		in.TypeStage = "alternance"
		assert.Contains(t, fieldNames(t, in.validate()), "type_stage")
	})

	t.Run("end date must follow start date", func(t *testing.T) {
		in := validStage()
		start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		in.DateDebut = &start
		in.DateFin = &start
		assert.Contains(t, fieldNames(t, in.validate()), "date_fin")
	})
}

func validEmploi() EmploiInput {
	return EmploiInput{
		Titre:        "Ingénieur télécoms",
		NomStructure: "Orange Cameroun",
		Description:  "Exploitation du coeur de réseau.",
		TypeEmploi:   domain.EmploiCDI,
	}
}

func TestEmploiInputValidate(t *testing.T) {
	t.Run("valid without salary", func(t *testing.T) {
		in := validEmploi()
		assert.NoError(t, in.validate())
	})

	t.Run("salary requires a currency", func(t *testing.T) {
		in := validEmploi()
		in.SalaireMin = ptr(350000.0)
		assert.Contains(t, fieldNames(t, in.validate()), "devise")

		in.Devise = ptr("XAF")
		assert.NoError(t, in.validate())
	})

	t.Run("blank currency does not count", func(t *testing.T) {
		in := validEmploi()
		in.SalaireMax = ptr(500000.0)
		in.Devise = ptr("  ")
		assert.Contains(t, fieldNames(t, in.validate()), "devise")
	})

	t.Run("min cannot exceed max", func(t *testing.T) {
		in := validEmploi()
		in.Devise = ptr("XAF")
		in.SalaireMin = ptr(600000.0)
		in.SalaireMax = ptr(400000.0)
		assert.Contains(t, fieldNames(t, in.validate()), "salaire_min")
	})

	t.Run("unknown type", func(t *testing.T) {
		in := validEmploi()
		in.TypeEmploi = "stage"
		assert.Contains(t, fieldNames(t, in.validate()), "type_emploi")
	})
}

func validFormation() FormationInput {
	return FormationInput{
		Titre:         "Certification fibre optique",
		NomStructure:  "ENSPM",
		Description:   "Préparation à la certification FTTH.",
		TypeFormation: domain.FormationPresentiel,
	}
}

func TestFormationInputValidate(t *testing.T) {
	t.Run("valid free training", func(t *testing.T) {
		in := validFormation()
		assert.NoError(t, in.validate())
	})

	t.Run("paid training requires price and currency", func(t *testing.T) {
		in := validFormation()
		in.EstPayante = true
		names := fieldNames(t, in.validate())
		assert.Contains(t, names, "prix")
		assert.Contains(t, names, "devise")

		in.Prix = ptr(75000.0)
		in.Devise = ptr("XAF")
		assert.NoError(t, in.validate())
	})

	t.Run("negative price", func(t *testing.T) {
		in := validFormation()
		in.Prix = ptr(-1.0)
		assert.Contains(t, fieldNames(t, in.validate()), "prix")
	})

	t.Run("duration must be positive", func(t *testing.T) {
		in := validFormation()
		in.DureeHeures = ptr(0)
		assert.Contains(t, fieldNames(t, in.validate()), "duree_heures")
	})

	t.Run("end date must follow start date", func(t *testing.T) {
		in := validFormation()
		start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		end := start.Add(-24 * time.Hour)
		in.DateDebut = &start
		in.DateFin = &end
		assert.Contains(t, fieldNames(t, in.validate()), "date_fin")
	})
}
