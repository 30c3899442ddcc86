// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package domain

import "github.com/olegiv/newsdesk-go/internal/model"

// SampleNews returns the articles shown on a first start, newest first.
func SampleNews() []model.NewsItem {
	return []model.NewsItem{
		{
			ID:         "1",
			Title:      "Transformimi i Skenderaj: Projektet e reja infrastrukturore që po ndryshojnë qytetin",
			Excerpt:    "Kryetari i komunës shpall planet për rrugët e reja dhe zonat e gjelbra që do të nisin këtë pranverë...",
			Category:   model.CategoryKomuna,
			Image:      "https://picsum.photos/seed/sk1/800/600",
			Date:       "10 Minuta më parë",
			Author:     "Redaksia",
			IsFeatured: true,
		},
		{
			ID:       "2",
			Title:    "Showbiz: Një tjetër bashkëpunim hit po vjen nga artistët tanë",
			Excerpt:  "Dy emra të mëdhenj të muzikës shqiptare sapo kanë konfirmuar klipin e tyre të ri që do të lansohet...",
			Category: model.CategoryShowbiz,
			Image:    "https://picsum.photos/seed/show1/800/600",
			Date:     "1 Orë më parë",
			Author:   "Showbiz Team",
		},
		{
			ID:       "3",
			Title:    "Sport: Drenica shënon fitore të rëndësishme në shtëpi",
			Excerpt:  "Stadiumi ishte i mbushur me tifozë ndërsa skuadra vendase tregoi dominim total ndaj rivalëve...",
			Category: model.CategorySport,
			Image:    "https://picsum.photos/seed/sport1/800/600",
			Date:     "2 Orë më parë",
			Author:   "Sport News",
		},
		{
			ID:       "4",
			Title:    "Ekonomia në rritje: Bizneset e reja po lulëzojnë në zonën industriale",
			Excerpt:  "Raporti i fundit tregon një rritje prej 15% në punësimin e të rinjve në rajonin tonë...",
			Category: model.CategoryEconomy,
			Image:    "https://picsum.photos/seed/econ1/800/600",
			Date:     "3 Orë më parë",
			Author:   "Econ Desk",
		},
		{
			ID:       "5",
			Title:    "Botë: Zhvillimet e fundit nga Brukseli për integrimin e rajonit",
			Excerpt:  "Samiti i radhës pritet të sjellë lajme pozitive për proceset integruese të Ballkanit Perëndimor...",
			Category: model.CategoryWorld,
			Image:    "https://picsum.photos/seed/world1/800/600",
			Date:     "4 Orë më parë",
			Author:   "Int News",
		},
		{
			ID:       "6",
			Title:    "Festivali i Filmit në Prishtinë shpall fituesit e edicionit të këtij viti",
			Excerpt:  "Një mbrëmje magjike e mbushur me yje dhe emocione ku u ndanë çmimet kryesore...",
			Category: model.CategoryShowbiz,
			Image:    "https://picsum.photos/seed/show2/800/600",
			Date:     "5 Orë më parë",
			Author:   "Showbiz Team",
		},
	}
}
