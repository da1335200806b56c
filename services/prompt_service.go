package services

import (
	"fmt"
	"strings"

	"ai_room_design/models"
)

// BuildDesignQueriesPrompt 构造生成亚马逊搜索词的提示词
// 要求模型每行输出一个可直接搜索的商品词条
func BuildDesignQueriesPrompt(req *models.DesignFormRequest) string {
	var b strings.Builder

	b.WriteString("You are an expert interior designer helping furnish a room on a budget.\n")
	b.WriteString("Based on the room photo and the client brief below, produce a shopping plan as Amazon search queries.\n\n")

	b.WriteString("Client brief:\n")
	b.WriteString(fmt.Sprintf("- Total budget: $%.0f\n", req.Budget))
	if strings.TrimSpace(req.Style) != "" {
		b.WriteString(fmt.Sprintf("- Preferred style: %s\n", req.Style))
	}
	if strings.TrimSpace(req.Notes) != "" {
		b.WriteString(fmt.Sprintf("- Notes: %s\n", req.Notes))
	}
	if len(req.SelectedProducts) > 0 {
		b.WriteString(fmt.Sprintf("- Product types the client wants: %s\n", strings.Join(req.SelectedProducts, ", ")))
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Output ONLY the search queries, one per line, no numbering, no bullets, no commentary.\n")
	b.WriteString("- Each query should name one product type with style and material keywords, e.g. \"mid-century walnut nightstand\".\n")
	b.WriteString("- Choose product types that fit the room in the photo and the budget.\n")
	b.WriteString("- 3 to 8 queries total, each for a different product type.\n")

	return b.String()
}

// defaultStylePrompt 合成图的默认风格描述
const defaultStylePrompt = "Scandinavian style, light woods, linen textures, matte metals"

// defaultGuidance 合成图的默认摆放约束
const defaultGuidance = "Prioritize symmetry and leave doorways clear."

// BuildCompositePrompt 构造房间合成图的提示词
// 输入图片为拼接图：上方是房间照片，下方网格是待摆放的商品
func BuildCompositePrompt(customPrompt string, productCount int) string {
	guidance := strings.TrimSpace(customPrompt)
	if guidance == "" {
		guidance = defaultGuidance
	}

	var b strings.Builder
	b.WriteString("The attached image is a composite sheet. The TOP section is a photo of a real room. ")
	b.WriteString(fmt.Sprintf("The GRID BELOW contains %d product photos on white tiles.\n\n", productCount))
	b.WriteString("Task: generate ONE photorealistic image of the room from the top section, ")
	b.WriteString("redecorated so that every product from the grid is placed naturally inside it.\n\n")
	b.WriteString("Requirements:\n")
	b.WriteString("- Keep the room's architecture, windows, walls and lighting exactly as in the photo.\n")
	b.WriteString("- Place each grid product at a realistic position and scale; do not invent extra furniture.\n")
	b.WriteString("- Do not render the grid, tiles or any borders in the output, only the finished room.\n")
	b.WriteString(fmt.Sprintf("- Style direction: %s\n", defaultStylePrompt))
	b.WriteString(fmt.Sprintf("- Placement guidance: %s\n", guidance))

	return b.String()
}
