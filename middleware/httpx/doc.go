// Package httpx reúne utilitários HTTP compartilhados pelos middlewares:
// identificação do endpoint (padrão de rota do chi) e um ResponseWriter que
// bufferiza a resposta para que ela possa ser cacheada/comprimida antes do envio.
package httpx
