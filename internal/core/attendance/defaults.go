package attendance

// DefaultPinnedSite is the site listed first when no other is configured.
const DefaultPinnedSite = "INA Centro"

// DefaultSites returns the sites created when the store holds none.
func DefaultSites() []Site {
	return []Site{
		{Name: "INA Centro", Color: "bg-neo-yellow"},
		{Name: "INA Campus Zona Sul", Color: "bg-neo-purple"},
		{Name: "INA Campus Cambé", Color: "bg-neo-cyan"},
		{Name: "INA Campus Ibiporã", Color: "bg-neo-pink"},
	}
}

// DefaultAreas returns the volunteer areas created alongside the default sites.
func DefaultAreas() []VolunteerArea {
	return []VolunteerArea{
		{Name: "Recepção"},
		{Name: "Kids"},
		{Name: "Louvor"},
		{Name: "Mídia"},
		{Name: "Estacionamento"},
	}
}
