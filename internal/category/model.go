package category

import "time"

// Category is one (main, sub) pair of the idea taxonomy.
type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MainCategory string    `gorm:"size:100;not null;index" json:"mainCategory"`
	SubCategory  string    `gorm:"size:150;not null" json:"subCategory"`
	Active       bool      `gorm:"default:true;index" json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Category) TableName() string {
	return "categories"
}

type CreateRequest struct {
	MainCategory string `json:"mainCategory" binding:"required" example:"Technology"`
	SubCategory  string `json:"subCategory" binding:"required" example:"Fintech"`
}

// defaultTaxonomy is loaded into an empty directory at startup.
var defaultTaxonomy = map[string][]string{
	"For Women": {
		"Beauty", "Fashion", "Event Planning", "Eco-Friendly Products", "Home Decor",
		"Fitness", "Creative Arts", "Personal Development", "Social Impact", "Childcare",
		"Health", "Online Retail", "Education", "Coaching/Mentoring", "Others",
	},
	"Technology": {
		"Software", "E-commerce", "Mobile Apps", "Cybersecurity", "Artificial Intelligence (AI)",
		"Data Analytics", "Robotics", "Blockchain", "Digital Marketing", "Edtech", "Fintech", "Saas",
	},
	"Agriculture": {
		"Organic Farming", "Precision Agriculture", "Agri-Tourism", "Agri-Tech Solutions",
		"Livestock Farming", "Data Analytics", "Agricultural Consulting", "Equipment Manufacturing",
		"Agroforestry", "Agricultural Education and Training",
	},
	"Fashion": {
		"Clothing & Accessories", "Ethical Fashion", "Sustainable Fashion", "Fashion Consulting",
		"Blogging", "Fashion Styling", "Event Management", "Fashion label/studio",
	},
	"Manufacturing": {
		"Electronics", "Textile", "Automotive", "Food Processing", "Pharmaceutical", "Furniture",
		"Chemical", "Metal Fabrication", "Printing and Publishing", "Consumer goods",
		"Renewable energy", "Construction materials", "Jewelry", "Others",
	},
	"Food & Beverage": {
		"Restaurant", "Food Truck", "Craft Brewery", "Ice cream parlour", "Catering services",
		"Gourmet Food products",
	},
	"Startup Ideas": {
		"Tech Startups", "Social Impact Startups", "Green Startups", "FinTech Startups",
		"HealthTech Startups", "EdTech Startups", "E-commerce Startups", "AI/ML Startups",
		"Food Tech Startups", "Travel Tech Startups",
	},
	"Sports": {
		"Fitness Training", "Sports Equipment", "Athletic Coaching", "Sports Analytics",
		"Sports Medicine", "Event Management", "Sports Marketing", "Youth Sports Programs",
		"Professional Sports Services", "Sports Nutrition",
	},
	"Entertainment & Media": {
		"Content Creation", "Video Production", "Music Industry", "Gaming", "Event Planning",
		"Social Media Management", "Podcasting", "Streaming Services", "Digital Art",
		"Photography Services",
	},
	"Travel & Tourism": {
		"Tour Operations", "Travel Planning", "Hospitality Services", "Adventure Tourism",
		"Cultural Tourism", "Eco-Tourism", "Travel Technology", "Accommodation Services",
		"Transportation Services", "Travel Consulting",
	},
	"Professional Services": {
		"Consulting", "Legal Services", "Accounting & Finance", "Marketing Services",
		"HR Services", "Business Coaching", "Project Management", "Real Estate Services",
		"Insurance Services", "Training & Development",
	},
	"Education": {
		"Online Learning", "Tutoring Services", "Educational Technology", "Language Learning",
		"Skill Development", "Professional Training", "Educational Content", "Learning Management",
		"Educational Consulting", "Special Education Services",
	},
}
