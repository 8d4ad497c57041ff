package services

import (
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
)

// seedTime is fixed so that re-seeding always produces identical records.
var seedTime = models.NewTimestamp(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))

// SeedUsers returns the accounts created on first run and after a reset.
func SeedUsers() []models.User {
	return []models.User{
		{
			ID:         "admin001",
			Name:       "Administrador Principal",
			Category:   "JUVENIL",
			Password:   "admin123",
			Role:       models.RoleAdmin,
			Email:      "admin@clubatletico.com",
			Specialty:  "Administrador del Sistema",
			Created:    seedTime,
			LastAccess: seedTime,
			Active:     true,
		},
		{
			ID:         "trainer001",
			Name:       "Entrenador Principal",
			Category:   "CADETE",
			Password:   "entrenador123",
			Role:       models.RoleTrainer,
			Email:      "entrenador@clubatletico.com",
			Specialty:  "Entrenador de Porteros Senior",
			Created:    seedTime,
			LastAccess: seedTime,
			Active:     true,
		},
	}
}

// SeedSessions returns the sample training sessions.
func SeedSessions() []models.Session {
	return []models.Session{
		{
			ID:            "session_001",
			Title:         "Técnica de Salidas en Centro del Campo",
			Description:   "Ejercicio focalizado en mejorar las salidas rápidas del portero cuando el balón está en el centro del campo. Se trabaja la comunicación con la defensa y la anticipación al juego aéreo.",
			MainObjective: "Mejorar la coordinación entre la salida del portero y el posicionamiento defensivo",
			SecondaryObjectives: []string{
				"Reflejos en situaciones de peligro",
				"Comunicación verbal clara con la defensa",
				"Lectura de juego anticipada",
			},
			Difficulty:  models.DifficultyIntermediate,
			Duration:    45,
			Materials:   models.ListMaterials("Conos", "Balones", "Petos de colores", "Portería móvil"),
			CreatorID:   "trainer001",
			CreatorName: "Entrenador Principal",
			CreatedAt:   seedTime,
			UpdatedAt:   seedTime,
			Active:      true,
		},
		{
			ID:            "session_002",
			Title:         "Penales: Control Mental y Técnica",
			Description:   "Sesión especializada en el entrenamiento de penales desde la perspectiva psicológica y técnica. Se trabaja la concentración, lectura del lenguaje corporal del lanzador y las técnicas de lanzamiento.",
			MainObjective: "Desarrollar la confianza y técnica en situaciones de penales",
			SecondaryObjectives: []string{
				"Control emocional bajo presión",
				"Lectura del lenguaje corporal",
				"Técnica de lanzamiento precisa",
			},
			Difficulty:  models.DifficultyAdvanced,
			Duration:    60,
			Materials:   models.ListMaterials("Balones", "Portería", "Conos", "Cronómetro"),
			CreatorID:   "trainer001",
			CreatorName: "Entrenador Principal",
			CreatedAt:   seedTime,
			UpdatedAt:   seedTime,
			Active:      true,
		},
		{
			ID:            "session_003",
			Title:         "Coordinación y Agilidad Básica",
			Description:   "Sesión introductoria enfocada en desarrollar la coordinación básica del portero. Se trabajan ejercicios fundamentales de movimiento, equilibrio y reacciones rápidas.",
			MainObjective: "Desarrollar la coordinación básica y agilidad inicial",
			SecondaryObjectives: []string{
				"Equilibrio y estabilidad",
				"Reacciones rápidas",
				"Movimientos fluidos",
			},
			Difficulty:  models.DifficultyBeginner,
			Duration:    30,
			Materials:   models.ListMaterials("Conos", "Escaleras de agilidad", "Balones pequeños"),
			CreatorID:   "trainer001",
			CreatorName: "Entrenador Principal",
			CreatedAt:   seedTime,
			UpdatedAt:   seedTime,
			Active:      true,
		},
	}
}
