package notion

import (
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// maxBlocksPerAppend is the Notion API's hard limit on children per append.
const maxBlocksPerAppend = 100

// BodyToBlocks converts the minutes body into one paragraph block per input
// line. Blank lines become empty paragraph blocks, not dropped, so the
// published page keeps the minutes' visual spacing and line order.
func BodyToBlocks(body string) []notionapi.Block {
	lines := strings.Split(body, "\n")
	blocks := make([]notionapi.Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, paragraphBlock(line))
	}
	return blocks
}

func paragraphBlock(line string) notionapi.Block {
	richText := []notionapi.RichText{}
	if strings.TrimSpace(line) != "" {
		richText = []notionapi.RichText{{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: line},
		}}
	}
	return notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeParagraph,
		},
		Paragraph: notionapi.Paragraph{RichText: richText},
	}
}

// preambleBlocks is the fixed metadata preamble written during page creation:
// the bold source-recording title, the generation timestamp, and a divider.
func preambleBlocks(sourceTitle string, now time.Time) []notionapi.Block {
	return []notionapi.Block{
		notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{RichText: []notionapi.RichText{{
				Type:        notionapi.ObjectTypeText,
				Text:        &notionapi.Text{Content: "元の録音タイトル: " + sourceTitle},
				Annotations: &notionapi.Annotations{Bold: true},
			}}},
		},
		notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{RichText: []notionapi.RichText{{
				Type: notionapi.ObjectTypeText,
				Text: &notionapi.Text{Content: "生成日時: " + now.Format(timestampLayout)},
			}}},
		},
		notionapi.DividerBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeDivider,
			},
			Divider: notionapi.Divider{},
		},
	}
}
