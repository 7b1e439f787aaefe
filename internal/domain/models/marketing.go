// internal/domain/models/marketing.go
package models

// Site-wide defaults.
const (
	DefaultSiteName  = "CO Consultants"
	DefaultPageTitle = "CO Consultants - Advanced Construction Analytics & Management Solutions"
	FileManagerName  = "CloudVault"
	ContactEmail     = "hello@coconsultants.com"
	ContactPhone     = "+1 (234) 567-8900"
	ContactTeamName  = "CO Consultants Team"
)

// Card is a titled blurb used by the hero, feature, process and value sections.
type Card struct {
	Title       string
	Description string
	Icon        string // icon key understood by the stylesheet
}

// Project is a showcase entry in the projects section.
type Project struct {
	Title       string
	Description string
	Status      string // Active, Completed, Development
	Tags        []string
}

// StatusClass returns the badge modifier for the project status.
func (p Project) StatusClass() string {
	switch p.Status {
	case "Active":
		return "badge-active"
	case "Completed":
		return "badge-completed"
	default:
		return "badge-development"
	}
}

// Stat is a headline figure in the about section.
type Stat struct {
	Number string
	Label  string
}

// HeroCards are the three cards under the landing headline.
var HeroCards = []Card{
	{Title: "Real-Time Tracking", Description: "RTLS, RFID, and QR-code systems for accurate monitoring", Icon: "cpu"},
	{Title: "Smart Dashboards", Description: "Visual reporting via Power BI with predictive analytics", Icon: "code"},
	{Title: "Productivity Insights", Description: "Forecast timelines and optimize resource allocation", Icon: "layers"},
}

// Features are the service offerings shown in the features section.
var Features = []Card{
	{
		Title:       "Construction Dashboard & Reporting",
		Description: "Visualize manpower & progress trends, identify bottlenecks instantly, and track KPIs with precision.",
		Icon:        "chart",
	},
	{
		Title:       "RTLS & RFID Tracking Systems",
		Description: "Bluetooth RTLS & RFID integration, QR-code access logs, and indoor/outdoor positioning.",
		Icon:        "activity",
	},
	{
		Title:       "Productivity Forecast & Proposal Support",
		Description: "Predictive analytics, timeline estimation, and resource modeling for accurate project planning.",
		Icon:        "rocket",
	},
	{
		Title:       "Smart Resource Allocation",
		Description: "Optimize workforce deployment and material usage with intelligent allocation insights to reduce waste and improve efficiency.",
		Icon:        "chart",
	},
}

// ProcessSteps describe how an engagement runs.
var ProcessSteps = []Card{
	{Title: "Data Collection Systems", Description: "RTLS, RFID, QR-codes, and Excel integration for comprehensive tracking", Icon: "chip"},
	{Title: "Analytics & Dashboards", Description: "Power BI visualizations with custom KPIs and predictive insights", Icon: "factory"},
	{Title: "Ongoing Support & Training", Description: "24/7 technical support and continuous system optimization", Icon: "handshake"},
}

// SprintPhases are the phases of a delivery sprint, in order.
var SprintPhases = []string{"Planning", "Development", "Testing", "Review"}

// Projects are the showcase projects.
var Projects = []Project{
	{
		Title:       "FireCat Project",
		Description: "Fire safety and emergency response system with real-time monitoring and automated alerts for construction sites.",
		Status:      "Active",
		Tags:        []string{"Safety", "Emergency Response", "Real-time"},
	},
	{
		Title:       "Sport Retail Analytics",
		Description: "Comprehensive retail analytics platform for sports equipment with inventory tracking and sales forecasting.",
		Status:      "Completed",
		Tags:        []string{"Retail", "Analytics", "Forecasting"},
	},
	{
		Title:       "Workwear Solutions",
		Description: "Professional workwear management system with RFID tracking and compliance monitoring.",
		Status:      "Active",
		Tags:        []string{"RFID", "Compliance", "Management"},
	},
	{
		Title:       "Hockey Analytics",
		Description: "Advanced hockey analytics platform with player tracking and performance insights using machine learning.",
		Status:      "Development",
		Tags:        []string{"Sports", "ML", "Tracking"},
	},
	{
		Title:       "Pet Tracker System",
		Description: "IoT-based pet tracking and monitoring system with GPS location and health metrics.",
		Status:      "Completed",
		Tags:        []string{"IoT", "GPS", "Health"},
	},
}

// Values are the company values in the about section.
var Values = []Card{
	{Title: "Precision", Description: "We deliver accurate, real-time data insights that drive informed decision-making.", Icon: "target"},
	{Title: "Collaboration", Description: "Working closely with construction teams to understand their unique challenges.", Icon: "users"},
	{Title: "Innovation", Description: "Pioneering new technologies to solve complex construction data problems.", Icon: "lightbulb"},
	{Title: "Excellence", Description: "Committed to delivering exceptional results that exceed expectations.", Icon: "award"},
}

// Stats are the headline figures in the about section.
var Stats = []Stat{
	{Number: "50+", Label: "Projects Completed"},
	{Number: "95%", Label: "Client Satisfaction"},
	{Number: "24/7", Label: "Support Available"},
	{Number: "5+", Label: "Years Experience"},
}
