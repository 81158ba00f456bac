package epub

import "encoding/xml"

// XML shapes for the EPUB package format. Only the pieces the ingestion
// transform needs are modeled: the container pointer, the Dublin Core
// metadata block, the manifest, and the spine.

type containerXML struct {
	XMLName   xml.Name `xml:"container"`
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type packageDoc struct {
	XMLName  xml.Name     `xml:"package"`
	Metadata *dcMetadata  `xml:"metadata"`
	Manifest *manifestXML `xml:"manifest"`
	Spine    *spineXML    `xml:"spine"`
}

type dcMetadata struct {
	Titles   []string `xml:"title"`
	Creators []string `xml:"creator"`
}

type manifestXML struct {
	Items []manifestItem `xml:"item"`
}

type manifestItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

type spineXML struct {
	ItemRefs []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"itemref"`
}
