package mcpserver

// PostFormat describes how Quiet reads a content file. It is served to LLM
// clients so they can explain or draft posts the site will accept.
const PostFormat = `# Quiet Post Format

Every file ending in .md, .markdown, .mmd or .mdown under the content
directory is a post.
Files and directories whose names start with "." are ignored, as are files
starting with "_" or "~".

## Header

An optional header block opens the file:

` + "```" + `
---
title: "Go Tips"
slug: go-tips
create: 2023-01-05 10:00
update: 2023-02-01
draft: false
---
Markdown body...
` + "```" + `

- The block starts with a first line containing ` + "`---`" + ` and ends at the next
  line ending in ` + "`---`" + `. A file without it is all body.
- Each line is ` + "`key: value`" + `. Keys are case-insensitive. A line without a ` + "`:`" + `
  makes the whole post fail to index until the file is fixed.
- Values may be wrapped in matching single or double quotes.

| key    | meaning                                                     |
|--------|-------------------------------------------------------------|
| title  | display title; defaults to the file name without extension  |
| slug   | URL key; defaults to the title                              |
| create | publication time; defaults to the file's creation time      |
| update | last update time; defaults to the file's modification time  |
| draft  | ` + "`true`" + ` keeps the post out of every listing        |

Dates use ` + "`yyyy-MM-dd`" + ` optionally followed by ` + "`HH`" + `, ` + "`HH:mm`" + ` or ` + "`HH:mm:ss`" + `,
in the server's local time zone. If create is later than update the two are swapped.

## Categories

The directories between the content root and the file are the post's
categories, outermost first: ` + "`tech/go/tips.md`" + ` is filed under tech > go.

## URLs

- ` + "`/yyyy/MM/dd/{key}.html`" + ` from the create date
- ` + "`/{categories...}/{key}.html`" + `
- category pages live under ` + "`/category/{categories...}`" + `

where {key} is the slug, or the title when no slug is set. When two posts
share a URL the newest one is served.
`
