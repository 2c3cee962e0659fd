package render

import (
	"html"
	"strings"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>__TITLE__</title>
<script>
MathJax = {
  tex: {
    inlineMath: [['\\(', '\\)']],
    displayMath: [['\\[', '\\]']],
    processEscapes: true
  },
  options: {
    skipHtmlTags: ['script', 'noscript', 'style', 'textarea', 'pre']
  }
};
</script>
<script async src="https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js"></script>
<style>
body {
  font-family: "Times New Roman", "SimSun", serif;
  max-width: 900px;
  margin: 0 auto;
  padding: 2em;
  line-height: 1.8;
  color: #222;
}
h1, h2, h3, h4, h5, h6 {
  font-family: "SimHei", "Arial", sans-serif;
  margin-top: 1.5em;
}
table {
  border-collapse: collapse;
  margin: 1em 0;
}
td {
  padding: 0.4em 0.8em;
}
img {
  max-width: 100%;
  height: auto;
}
</style>
</head>
<body>
__BODY__
</body>
</html>
`

// Page wraps a rendered fragment in a standalone HTML document with the
// MathJax loader and base styling.
func Page(title, fragment string) string {
	out := strings.Replace(pageTemplate, "__TITLE__", html.EscapeString(title), 1)
	return strings.Replace(out, "__BODY__", fragment, 1)
}
