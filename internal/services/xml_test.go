package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nfeProcDocument = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc versao="4.00" xmlns="http://www.portalfiscal.inf.br/nfe">
  <NFe>
    <infNFe Id="NFe29240112345678000199650010000012341234567890" versao="4.00">
      <det nItem="1">
        <prod>
          <cProd>7894900011517</cProd>
          <cEAN>7894900011517</cEAN>
          <xProd>REFRIGERANTE COLA 2L</xProd>
          <NCM>22021000</NCM>
          <qCom>2.0000</qCom>
          <vUnCom>8.99</vUnCom>
          <vProd>17.98</vProd>
        </prod>
      </det>
      <det nItem="2">
        <prod>
          <cProd>123</cProd>
          <xProd>ARROZ TIPO 1 5KG</xProd>
          <NCM>10063021</NCM>
          <qCom>1.0000</qCom>
          <vUnCom>25.50</vUnCom>
          <vProd>25.50</vProd>
        </prod>
      </det>
    </infNFe>
  </NFe>
</nfeProc>`

func TestParseDocumentXMLNfeProc(t *testing.T) {
	products := ParseDocumentXML(nfeProcDocument)
	require.Len(t, products, 2)

	assert.Equal(t, "REFRIGERANTE COLA 2L", products[0].Name)
	assert.Equal(t, "Código: 7894900011517", products[0].Description)
	assert.InDelta(t, 17.98, products[0].Price, 0.001)
	assert.Equal(t, 2, products[0].Stock)
	assert.Equal(t, "22021000", products[0].NCM)

	assert.Equal(t, "ARROZ TIPO 1 5KG", products[1].Name)
	assert.InDelta(t, 25.50, products[1].Price, 0.001)
	assert.Equal(t, 1, products[1].Stock)
}

func TestParseDocumentXMLBareInfNFe(t *testing.T) {
	doc := `<infNFe versao="4.00">
	  <det nItem="1">
	    <prod>
	      <xProd>FEIJAO CARIOCA 1KG</xProd>
	      <qCom>1.0000</qCom>
	      <vProd>8.90</vProd>
	    </prod>
	  </det>
	</infNFe>`

	products := ParseDocumentXML(doc)
	require.Len(t, products, 1)
	assert.Equal(t, "FEIJAO CARIOCA 1KG", products[0].Name)
	assert.InDelta(t, 8.90, products[0].Price, 0.001)
}

func TestParseDocumentXMLFieldFallbacks(t *testing.T) {
	doc := `<NFe>
	  <infNFe>
	    <det nItem="1">
	      <prod>
	        <cEAN>7891000100103</cEAN>
	        <desc>LEITE CONDENSADO 395G</desc>
	        <qTrib>3.0000</qTrib>
	        <vUnCom>6,45</vUnCom>
	      </prod>
	    </det>
	  </infNFe>
	</NFe>`

	products := ParseDocumentXML(doc)
	require.Len(t, products, 1)

	// name falls back to desc, price to vUnCom, quantity to qTrib, code to cEAN
	assert.Equal(t, "LEITE CONDENSADO 395G", products[0].Name)
	assert.Equal(t, "Código: 7891000100103", products[0].Description)
	assert.InDelta(t, 6.45, products[0].Price, 0.001)
	assert.Equal(t, 3, products[0].Stock)
}

func TestParseDocumentXMLSkipsUnusableItems(t *testing.T) {
	doc := `<NFe>
	  <infNFe>
	    <det nItem="1">
	      <prod>
	        <xProd>ITEM SEM PRECO</xProd>
	        <vProd>0.00</vProd>
	      </prod>
	    </det>
	    <det nItem="2">
	      <prod>
	        <vProd>10.00</vProd>
	      </prod>
	    </det>
	    <det nItem="3">
	      <prod>
	        <xProd>ITEM VALIDO</xProd>
	        <vProd>10.00</vProd>
	      </prod>
	    </det>
	  </infNFe>
	</NFe>`

	products := ParseDocumentXML(doc)
	require.Len(t, products, 1)
	assert.Equal(t, "ITEM VALIDO", products[0].Name)
	assert.Equal(t, 1, products[0].Stock)
}

func TestParseDocumentXMLUnrecognizedContent(t *testing.T) {
	assert.Empty(t, ParseDocumentXML("<html><body>erro</body></html>"))
	assert.Empty(t, ParseDocumentXML("not xml at all"))
	assert.Empty(t, ParseDocumentXML(""))
}

func TestParseDecimal(t *testing.T) {
	v, err := parseDecimal("12,50")
	require.NoError(t, err)
	assert.InDelta(t, 12.50, v, 0.001)

	v, err = parseDecimal(" 8.99 ")
	require.NoError(t, err)
	assert.InDelta(t, 8.99, v, 0.001)

	_, err = parseDecimal("abc")
	assert.Error(t, err)
}
