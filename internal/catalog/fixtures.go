package catalog

func intPtr(v int) *int { return &v }

// DefaultFixtures returns a fresh copy of the built-in development data.
func DefaultFixtures() *Fixtures {
	return &Fixtures{
		Banners: []Banner{
			{ID: 1, Title: "Your health, delivered", Subtitle: "Free delivery on prescriptions over $25", ImageURL: "/images/banners/hero-delivery.jpg", LinkURL: "/prescriptions", Type: BannerHero, IsActive: true, SortOrder: 1},
			{ID: 2, Title: "Flu season is here", Subtitle: "Book a vaccination at your nearest pharmacy", ImageURL: "/images/banners/hero-flu.jpg", LinkURL: "/services/vaccinations", Type: BannerHero, IsActive: true, SortOrder: 2},
			{ID: 3, Title: "Vitamins 20% off", ImageURL: "/images/banners/promo-vitamins.jpg", LinkURL: "/categories/vitamins-supplements", Type: BannerPromo, IsActive: true, SortOrder: 1},
			{ID: 4, Title: "Summer skincare", ImageURL: "/images/banners/promo-skincare.jpg", LinkURL: "/categories/skin-care", Type: BannerPromo, IsActive: false, SortOrder: 2},
			{ID: 5, Title: "Talk to a pharmacist", Subtitle: "Online consultations 8am to 10pm", ImageURL: "/images/banners/sidebar-consult.jpg", LinkURL: "/services/consultation", Type: BannerSidebar, IsActive: true, SortOrder: 1},
			{ID: 6, Title: "Baby care essentials", ImageURL: "/images/banners/category-baby.jpg", LinkURL: "/categories/baby-care", Type: BannerCategory, IsActive: true, SortOrder: 1},
		},
		Services: []ServiceMenuItem{
			{ID: 1, Name: "Prescriptions", Description: "Upload and refill prescriptions", Icon: "prescription", Path: "/services/prescriptions", SortOrder: 1},
			{ID: 2, Name: "Online consultation", Description: "Chat with a licensed pharmacist", Icon: "chat", Path: "/services/consultation", SortOrder: 2},
			{ID: 3, Name: "Vaccinations", Description: "Book flu and travel vaccines", Icon: "syringe", Path: "/services/vaccinations", SortOrder: 3},
			{ID: 4, Name: "Lab tests", Description: "Home sample collection", Icon: "flask", Path: "/services/lab-tests", SortOrder: 4},
			{ID: 5, Name: "Health checks", Description: "Blood pressure and glucose screening", Icon: "heart", Path: "/services/health-checks", SortOrder: 5},
		},
		Emergency: []EmergencyContact{
			{ID: 1, Name: "Ambulance", Phone: "911", Description: "Life-threatening emergencies", Icon: "ambulance", Available24h: true, SortOrder: 1},
			{ID: 2, Name: "Poison control", Phone: "1-800-222-1222", Description: "Suspected poisoning or overdose", Icon: "warning", Available24h: true, SortOrder: 2},
			{ID: 3, Name: "Pharmacist hotline", Phone: "1-800-555-0199", Description: "Medication questions", Icon: "phone", Available24h: false, SortOrder: 3},
			{ID: 4, Name: "Mental health crisis line", Phone: "988", Description: "Call or text for support", Icon: "support", Available24h: true, SortOrder: 4},
		},
		Categories: []Category{
			{ID: 1, Name: "Medicines", Slug: "medicines", Icon: "pill", ProductCount: 412, SortOrder: 1},
			{ID: 2, Name: "Pain relief", Slug: "pain-relief", Icon: "pill", ParentID: intPtr(1), ProductCount: 64, SortOrder: 1},
			{ID: 3, Name: "Cold and flu", Slug: "cold-flu", Icon: "thermometer", ParentID: intPtr(1), ProductCount: 58, SortOrder: 2},
			{ID: 4, Name: "Vitamins and supplements", Slug: "vitamins-supplements", Icon: "leaf", ProductCount: 230, SortOrder: 2},
			{ID: 5, Name: "Personal care", Slug: "personal-care", Icon: "soap", ProductCount: 305, SortOrder: 3},
			{ID: 6, Name: "Skin care", Slug: "skin-care", Icon: "drop", ParentID: intPtr(5), ProductCount: 121, SortOrder: 1},
			{ID: 7, Name: "Baby care", Slug: "baby-care", Icon: "baby", ProductCount: 96, SortOrder: 4},
			{ID: 8, Name: "Medical devices", Slug: "medical-devices", Icon: "stethoscope", ProductCount: 77, SortOrder: 5},
		},
	}
}
