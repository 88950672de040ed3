package catalog

import "github.com/shopspring/decimal"

func builtinPanels() []PanelSpec {
	return []PanelSpec{
		// Foreign
		{Name: "Jinko Solar (Tiger Pro, Eagle)", Power: PowerRange{550, 620}, DefaultPower: 580, LengthMM: 2278, WidthMM: 1134, ThicknessMM: 30, AreaM2: 2.58, Efficiency: 22.5, Origin: OriginForeign},
		{Name: "Trina Solar (Vertex S, Vertex N)", Power: PowerRange{430, 510}, DefaultPower: 470, LengthMM: 1762, WidthMM: 1134, ThicknessMM: 30, AreaM2: 2.00, Efficiency: 21.8, Origin: OriginForeign},
		{Name: "Canadian Solar (HiKu6, TOPHiKu6)", Power: PowerRange{540, 610}, DefaultPower: 575, LengthMM: 2261, WidthMM: 1134, ThicknessMM: 35, AreaM2: 2.56, Efficiency: 22.3, Origin: OriginForeign},
		{Name: "JA Solar (DeepBlue 4.0)", Power: PowerRange{430, 500}, DefaultPower: 465, LengthMM: 1762, WidthMM: 1134, ThicknessMM: 30, AreaM2: 2.00, Efficiency: 21.5, Origin: OriginForeign},
		{Name: "LONGi Solar (Hi-MO 6)", Power: PowerRange{420, 490}, DefaultPower: 455, LengthMM: 1722, WidthMM: 1134, ThicknessMM: 30, AreaM2: 1.95, Efficiency: 22.0, Origin: OriginForeign},
		{Name: "AE Solar (Topcon Series)", Power: PowerRange{550, 620}, DefaultPower: 580, LengthMM: 2278, WidthMM: 1133, ThicknessMM: 30, AreaM2: 2.58, Efficiency: 22.4, Origin: OriginForeign},
		{Name: "Q Cells (Q.Peak Duo)", Power: PowerRange{400, 470}, DefaultPower: 435, LengthMM: 1879, WidthMM: 1045, ThicknessMM: 32, AreaM2: 1.96, Efficiency: 21.6, Origin: OriginForeign},
		{Name: "SunPower (Maxeon 6)", Power: PowerRange{410, 450}, DefaultPower: 430, LengthMM: 1872, WidthMM: 1032, ThicknessMM: 40, AreaM2: 1.93, Efficiency: 22.8, Origin: OriginForeign},
		{Name: "REC Solar (Alpha Pure)", Power: PowerRange{405, 450}, DefaultPower: 425, LengthMM: 1730, WidthMM: 1118, ThicknessMM: 30, AreaM2: 1.93, Efficiency: 22.2, Origin: OriginForeign},
		{Name: "Znshine Solar (Zebra Series)", Power: PowerRange{600, 700}, DefaultPower: 650, LengthMM: 2465, WidthMM: 1134, ThicknessMM: 35, AreaM2: 2.79, Efficiency: 23.0, Origin: OriginForeign},

		// Domestic
		{Name: "Mana Energy Pak (PERC, TOPCon)", Power: PowerRange{400, 550}, DefaultPower: 475, LengthMM: 1956, WidthMM: 992, ThicknessMM: 35, AreaM2: 1.94, Efficiency: 21.5, Origin: OriginDomestic},
		{Name: "Taban Energy (Taban Mono)", Power: PowerRange{380, 500}, DefaultPower: 440, LengthMM: 1956, WidthMM: 992, ThicknessMM: 40, AreaM2: 1.94, Efficiency: 21.0, Origin: OriginDomestic},
		{Name: "Solar Sanat Firouzeh", Power: PowerRange{380, 480}, DefaultPower: 430, LengthMM: 1956, WidthMM: 992, ThicknessMM: 40, AreaM2: 1.94, Efficiency: 20.8, Origin: OriginDomestic},
		{Name: "Paydar Solar (Bifacial)", Power: PowerRange{540, 620}, DefaultPower: 580, LengthMM: 2278, WidthMM: 1134, ThicknessMM: 30, AreaM2: 2.58, Efficiency: 22.3, Origin: OriginDomestic},
		{Name: "Manasazan", Power: PowerRange{380, 480}, DefaultPower: 430, LengthMM: 1956, WidthMM: 992, ThicknessMM: 35, AreaM2: 1.94, Efficiency: 20.8, Origin: OriginDomestic},
		{Name: "Mehrabad New Energies", Power: PowerRange{380, 480}, DefaultPower: 430, LengthMM: 1956, WidthMM: 992, ThicknessMM: 30, AreaM2: 1.94, Efficiency: 20.8, Origin: OriginDomestic},
		{Name: "Hedayat Noor Yazd Solar", Power: PowerRange{380, 480}, DefaultPower: 430, LengthMM: 1956, WidthMM: 992, ThicknessMM: 30, AreaM2: 1.94, Efficiency: 20.5, Origin: OriginDomestic},
		{Name: "Semnan Electronic Sazan", Power: PowerRange{380, 480}, DefaultPower: 430, LengthMM: 1956, WidthMM: 992, ThicknessMM: 30, AreaM2: 1.94, Efficiency: 20.5, Origin: OriginDomestic},
	}
}

func builtinInverters() []InverterSpec {
	return []InverterSpec{
		{
			Brand:         "Growatt",
			Models:        map[int]string{3: "MIN 3000TL-X", 5: "MIN 5000TL-X", 6: "MIN 6000TL-X", 8: "MOD 8KTL3-X", 10: "MOD 10KTL3-X", 15: "MOD 15KTL3-X", 20: "MOD 20KTL3-X"},
			WarrantyYears: 5,
			Origin:        "China",
			PricePerKW:    decimal.NewFromInt(1_800_000),
		},
		{
			Brand:         "Huawei",
			Models:        map[int]string{3: "SUN2000-3KTL", 5: "SUN2000-5KTL", 6: "SUN2000-6KTL", 8: "SUN2000-8KTL", 10: "SUN2000-10KTL", 15: "SUN2000-15KTL", 20: "SUN2000-20KTL"},
			WarrantyYears: 5,
			Origin:        "China",
			PricePerKW:    decimal.NewFromInt(2_200_000),
		},
		{
			Brand:         "Sungrow",
			Models:        map[int]string{3: "SG3.0RS", 5: "SG5.0RS", 6: "SG6.0RS", 8: "SG8.0RT", 10: "SG10RT", 15: "SG15RT", 20: "SG20RT"},
			WarrantyYears: 5,
			Origin:        "China",
			PricePerKW:    decimal.NewFromInt(2_000_000),
		},
		{
			Brand:         "Fronius",
			Models:        map[int]string{3: "Primo 3.0", 5: "Primo 5.0", 6: "Primo 6.0", 8: "Symo 8.2", 10: "Symo 10.0", 15: "Symo 15.0", 20: "Symo 20.0"},
			WarrantyYears: 7,
			Origin:        "Austria",
			PricePerKW:    decimal.NewFromInt(3_500_000),
		},
	}
}
