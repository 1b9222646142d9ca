package wcag

// Rule metadata. Severity is the rule's headline severity; individual
// checks may report lower ones.
var (
	NonTextContent = Rule{
		ID: "1.1.1", Name: "Non-text Content", Level: LevelA, Severity: SeveritySerious,
		HelpURL: understandingBase + "non-text-content.html",
	}
	InfoAndRelationships = Rule{
		ID: "1.3.1", Name: "Info and Relationships", Level: LevelA, Severity: SeveritySerious,
		HelpURL: understandingBase + "info-and-relationships.html",
	}
	ContrastMinimum = Rule{
		ID: "1.4.3", Name: "Contrast (Minimum)", Level: LevelAA, Severity: SeveritySerious,
		HelpURL: understandingBase + "contrast-minimum.html",
	}
	Keyboard = Rule{
		ID: "2.1.1", Name: "Keyboard", Level: LevelA, Severity: SeverityModerate,
		HelpURL: understandingBase + "keyboard.html",
	}
	BypassBlocks = Rule{
		ID: "2.4.1", Name: "Bypass Blocks", Level: LevelA, Severity: SeverityModerate,
		HelpURL: understandingBase + "bypass-blocks.html",
	}
	PageTitled = Rule{
		ID: "2.4.2", Name: "Page Titled", Level: LevelA, Severity: SeveritySerious,
		HelpURL: understandingBase + "page-titled.html",
	}
	LinkPurpose = Rule{
		ID: "2.4.4", Name: "Link Purpose (In Context)", Level: LevelA, Severity: SeverityModerate,
		HelpURL: understandingBase + "link-purpose-in-context.html",
	}
	HeadingsAndLabels = Rule{
		ID: "2.4.6", Name: "Headings and Labels", Level: LevelAA, Severity: SeverityModerate,
		HelpURL: understandingBase + "headings-and-labels.html",
	}
	SectionHeadings = Rule{
		ID: "2.4.10", Name: "Section Headings", Level: LevelAAA, Severity: SeverityMinor,
		HelpURL: understandingBase + "section-headings.html",
	}
	LanguageOfPage = Rule{
		ID: "3.1.1", Name: "Language of Page", Level: LevelA, Severity: SeveritySerious,
		HelpURL: understandingBase + "language-of-page.html",
	}
	LabelsOrInstructions = Rule{
		ID: "3.3.2", Name: "Labels or Instructions", Level: LevelA, Severity: SeverityCritical,
		HelpURL: understandingBase + "labels-or-instructions.html",
	}
	NameRoleValue = Rule{
		ID: "4.1.2", Name: "Name, Role, Value", Level: LevelA, Severity: SeveritySerious,
		HelpURL: understandingBase + "name-role-value.html",
	}
)
