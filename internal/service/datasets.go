package service

import (
	"strconv"
	"time"

	"github.com/ecclesia-app/admin-gateway/internal/models"
	"github.com/ecclesia-app/admin-gateway/pkg/export"
)

// Dataset builders turn a filtered collection into the tabular form the
// renderers consume. Column headers match the dashboard's French labels.

func formatDate(d models.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}

// GroupDataset renders the group list.
func GroupDataset(groups []models.Group, generatedAt time.Time) export.Dataset {
	headers := []string{"Nom", "Description", "Tranche d'âge", "Responsable", "Membres"}
	rows := make([]map[string]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, map[string]string{
			"Nom":           g.Name,
			"Description":   g.Description,
			"Tranche d'âge": string(g.AgeGroup),
			"Responsable":   g.Minister,
			"Membres":       strconv.Itoa(g.MemberCount),
		})
	}
	return export.Dataset{Title: "Groupes", GeneratedAt: generatedAt, Headers: headers, Rows: rows}
}

// MemberDataset renders the roster.
func MemberDataset(members []models.Member, generatedAt time.Time) export.Dataset {
	headers := []string{"Nom", "Prénom", "Genre", "Naissance", "Téléphone", "E-mail", "Adresse"}
	rows := make([]map[string]string, 0, len(members))
	for _, m := range members {
		rows = append(rows, map[string]string{
			"Nom":       m.LastName,
			"Prénom":    m.FirstName,
			"Genre":     m.Gender,
			"Naissance": formatDate(m.BirthDate),
			"Téléphone": m.Phone,
			"E-mail":    m.Email,
			"Adresse":   m.Address,
		})
	}
	return export.Dataset{Title: "Membres", GeneratedAt: generatedAt, Headers: headers, Rows: rows}
}

// MarriageDataset renders the marriage registry.
func MarriageDataset(marriages []models.Marriage, generatedAt time.Time) export.Dataset {
	headers := []string{"Époux", "Épouse", "Date", "Lieu", "Certificat"}
	rows := make([]map[string]string, 0, len(marriages))
	for _, m := range marriages {
		rows = append(rows, map[string]string{
			"Époux":      m.HusbandName,
			"Épouse":     m.WifeName,
			"Date":       formatDate(m.WeddingDate),
			"Lieu":       m.Location,
			"Certificat": m.CertificateNo,
		})
	}
	return export.Dataset{Title: "Mariages", GeneratedAt: generatedAt, Headers: headers, Rows: rows}
}

// AppointmentDataset renders the agenda.
func AppointmentDataset(appointments []models.Appointment, generatedAt time.Time) export.Dataset {
	headers := []string{"Titre", "Description", "Début", "Fin", "Lieu"}
	rows := make([]map[string]string, 0, len(appointments))
	for _, a := range appointments {
		rows = append(rows, map[string]string{
			"Titre":       a.Title,
			"Description": a.Description,
			"Début":       formatTime(a.StartTime),
			"Fin":         formatTime(a.EndTime),
			"Lieu":        a.Location,
		})
	}
	return export.Dataset{Title: "Rendez-vous", GeneratedAt: generatedAt, Headers: headers, Rows: rows}
}

// SundayClassDataset renders the Sunday-school list.
func SundayClassDataset(classes []models.SundayClass, generatedAt time.Time) export.Dataset {
	headers := []string{"Classe", "Moniteur", "Tranche d'âge", "Salle", "Horaire"}
	rows := make([]map[string]string, 0, len(classes))
	for _, c := range classes {
		rows = append(rows, map[string]string{
			"Classe":        c.Name,
			"Moniteur":      c.Teacher,
			"Tranche d'âge": string(c.AgeGroup),
			"Salle":         c.Room,
			"Horaire":       c.Schedule,
		})
	}
	return export.Dataset{Title: "Écoles du dimanche", GeneratedAt: generatedAt, Headers: headers, Rows: rows}
}

// DeathDataset renders the death registry.
func DeathDataset(deaths []models.Death, generatedAt time.Time) export.Dataset {
	headers := []string{"Membre", "Date", "Note"}
	rows := make([]map[string]string, 0, len(deaths))
	for _, d := range deaths {
		rows = append(rows, map[string]string{
			"Membre": d.MemberName,
			"Date":   formatDate(d.Date),
			"Note":   d.Note,
		})
	}
	return export.Dataset{Title: "Décès", GeneratedAt: generatedAt, Headers: headers, Rows: rows}
}

// MentorshipDataset renders the Timothée/Tite pairing list.
func MentorshipDataset(mentorships []models.Mentorship, generatedAt time.Time) export.Dataset {
	headers := []string{"Timothée", "Tite", "Depuis"}
	rows := make([]map[string]string, 0, len(mentorships))
	for _, m := range mentorships {
		rows = append(rows, map[string]string{
			"Timothée": m.MentorName,
			"Tite":     m.MenteeName,
			"Depuis":   formatDate(m.Since),
		})
	}
	return export.Dataset{Title: "Mentorats", GeneratedAt: generatedAt, Headers: headers, Rows: rows}
}

// ChurchDataset renders the church list of a mission.
func ChurchDataset(churches []models.Church, generatedAt time.Time) export.Dataset {
	headers := []string{"Nom", "Ville", "Adresse", "Pasteur"}
	rows := make([]map[string]string, 0, len(churches))
	for _, c := range churches {
		rows = append(rows, map[string]string{
			"Nom":     c.Name,
			"Ville":   c.City,
			"Adresse": c.Address,
			"Pasteur": c.Pastor,
		})
	}
	return export.Dataset{Title: "Églises", GeneratedAt: generatedAt, Headers: headers, Rows: rows}
}

// MissionDataset renders the mission directory.
func MissionDataset(missions []models.Mission, generatedAt time.Time) export.Dataset {
	headers := []string{"Nom", "Président", "Région"}
	rows := make([]map[string]string, 0, len(missions))
	for _, m := range missions {
		rows = append(rows, map[string]string{
			"Nom":       m.Name,
			"Président": m.President,
			"Région":    m.Region,
		})
	}
	return export.Dataset{Title: "Missions", GeneratedAt: generatedAt, Headers: headers, Rows: rows}
}
