// Package pptx provides read and structural-rewrite access to PPTX decks.
package pptx

import "encoding/xml"

// presentationXML represents the ppt/presentation.xml file structure.
type presentationXML struct {
	XMLName     xml.Name        `xml:"presentation"`
	SlideIdList *slideIdListXML `xml:"sldIdLst"`
}

type slideIdListXML struct {
	SlideId []slideIdXML `xml:"sldId"`
}

type slideIdXML struct {
	ID  string `xml:"id,attr"`
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"` // r:id attribute for relationship
}

// slideXML represents a ppt/slides/slide*.xml file structure.
type slideXML struct {
	XMLName xml.Name `xml:"sld"`
	CSld    cSldXML  `xml:"cSld"`
}

type cSldXML struct {
	SpTree spTreeXML `xml:"spTree"`
}

// spTreeXML represents the shape tree containing all shapes on a slide.
type spTreeXML struct {
	Sp    []spXML    `xml:"sp"`
	GrpSp []grpSpXML `xml:"grpSp"`
}

// spXML represents a shape element.
type spXML struct {
	NvSpPr nvSpPrXML  `xml:"nvSpPr"`
	SpPr   spPrXML    `xml:"spPr"`
	TxBody *txBodyXML `xml:"txBody"`
}

type nvSpPrXML struct {
	NvPr nvPrXML `xml:"nvPr"`
}

type nvPrXML struct {
	Ph *phXML `xml:"ph"` // Placeholder info
}

type phXML struct {
	Type string `xml:"type,attr"` // title, body, subTitle, ctrTitle, etc.
	Idx  int    `xml:"idx,attr"`
}

type spPrXML struct {
	Xfrm *xfrmXML `xml:"xfrm"`
}

type xfrmXML struct {
	Off offXML `xml:"off"`
	Ext extXML `xml:"ext"`
}

type offXML struct {
	X int64 `xml:"x,attr"` // X position in EMUs
	Y int64 `xml:"y,attr"` // Y position in EMUs
}

type extXML struct {
	Cx int64 `xml:"cx,attr"` // Width in EMUs
	Cy int64 `xml:"cy,attr"` // Height in EMUs
}

// txBodyXML represents text body content.
type txBodyXML struct {
	P []pXML `xml:"p"` // Paragraphs
}

// pXML represents a paragraph.
type pXML struct {
	PPr *pPrXML  `xml:"pPr"`
	R   []rXML   `xml:"r"`
	Fld []fldXML `xml:"fld"` // Fields (like slide number)
}

type pPrXML struct {
	Lvl int `xml:"lvl,attr"` // Indent level (0-8)
}

// rXML represents a text run.
type rXML struct {
	T string `xml:"t"`
}

type fldXML struct {
	Type string `xml:"type,attr"`
	T    string `xml:"t"`
}

// grpSpXML represents a group of shapes.
type grpSpXML struct {
	Sp    []spXML    `xml:"sp"`
	GrpSp []grpSpXML `xml:"grpSp"` // Nested groups
}

// relationshipsXML represents .rels files.
type relationshipsXML struct {
	XMLName      xml.Name          `xml:"Relationships"`
	Relationship []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}
