package catalog

import "github.com/dukerupert/foyer/internal/model"

var (
	kids       = []model.Role{model.RoleTeen, model.RoleChild}
	grownUps   = []model.Role{model.RoleParent, model.RoleTeen}
	everyone   = []model.Role{model.RoleParent, model.RoleTeen, model.RoleChild}
	youngsters = []model.Role{model.RoleChild}
)

var builtins = []model.TaskDefinition{
	{Name: "Mission Décollage", Points: 10, Category: "Chambre", Roles: kids, Frequency: model.FrequencyDaily,
		Description: "Faire son lit et ranger son pyjama"},
	{Name: "Chef de Table", Points: 10, Category: "Cuisine", Roles: kids, Frequency: model.FrequencyDaily,
		Description: "Mettre le couvert proprement"},
	{Name: "Magicien du Salon", Points: 15, Category: "Salon", Roles: youngsters, Frequency: model.FrequencyDaily,
		Description: "Ranger tous les jouets éparpillés"},
	{Name: "Sourire de Star", Points: 5, Category: "Hygiène", Roles: youngsters, Frequency: model.FrequencyDaily,
		Description: "Brossage de dents sans rappel"},
	{Name: "Lave-vaisselle", Points: 15, Category: "Cuisine", Roles: grownUps, Frequency: model.FrequencyDaily,
		Description: "Remplir ou vider le lave-vaisselle"},
	{Name: "Aspirateur", Points: 30, Category: "Salon", Roles: grownUps, Frequency: model.FrequencyWeekly,
		Description: "Passer l'aspirateur dans les pièces communes"},
	{Name: "Machine à laver", Points: 20, Category: "Linge", Roles: grownUps, Frequency: model.FrequencyWeekly,
		WeeklyCap: 2, Description: "Lancer et étendre une machine (2x/semaine)"},
	{Name: "Sortir les poubelles", Points: 10, Category: "Extérieur", Roles: grownUps, Frequency: model.FrequencyWeekly,
		Uncapped: true, Cadence: "FREQ=WEEKLY;BYDAY=TU,FR", Description: "Sortir les bacs la veille du ramassage"},
	{Name: "Grand rangement de chambre", Points: 25, Category: "Chambre", Roles: kids, Frequency: model.FrequencyWeekly,
		Description: "Tout ranger, aspirer et changer les draps"},
	{Name: "Aide aux courses", Points: 25, Category: "Courses", Roles: everyone, Frequency: model.FrequencyOneOff,
		Description: "Porter et ranger les courses"},
	{Name: "Coup de main", Points: 5, Category: "Entraide", Roles: everyone, Frequency: model.FrequencyNone,
		Description: "Aider un membre de la famille sans qu'on le demande"},
}

// Builtins returns a copy of the compiled-in task catalog.
func Builtins() []model.TaskDefinition {
	out := make([]model.TaskDefinition, len(builtins))
	for i, t := range builtins {
		t.Roles = append([]model.Role(nil), t.Roles...)
		t.Builtin = true
		out[i] = t
	}
	return out
}
